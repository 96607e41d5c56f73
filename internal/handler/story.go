package handler

import (
	"fmt"

	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/scripting"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

func (d *Deps) startStoryEvent(p *world.Player, cb *transport.Callback) {
	events := d.Scripts.StoryEvents()
	if len(events) == 0 {
		d.startMonsterFight(p, cb)
		return
	}
	ev := events[d.Rng.Intn(len(events))]
	msgID := d.editOrSend(cb.Chat.ID, cb.MessageID,
		fmt.Sprintf("📻 %s\n\n%s", ev.Title, ev.Text),
		&transport.SendOpts{ReplyMarkup: eventKeyboard()})
	p.CurrentEvent = &world.EventState{EventID: ev.ID, MessageID: msgID}
}

// cbEventAction resolves a story card: coin flip between the good and the
// bad outcome.
func (d *Deps) cbEventAction(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	if p.CurrentEvent == nil {
		d.answer(cb, "Событие уже прошло.", true)
		return
	}
	ev := d.Scripts.EventByID(p.CurrentEvent.EventID)
	msgID := p.CurrentEvent.MessageID
	p.CurrentEvent = nil
	if ev == nil {
		d.answer(cb, "Событие уже прошло.", true)
		return
	}
	d.answer(cb, "", false)

	if d.Loot.Chance(0.5) {
		reward := d.Loot.IntBetween(100, 250)
		p.AddInfection(reward)
		p.GrantSurvivalDay()
		text := fmt.Sprintf("%s\n\n☣️ +%d заражения, +1 день выживания.", ev.GoodText, reward)
		if d.Loot.Chance(0.15) {
			if item := d.Loot.WeightedPick(d.Catalog.DropPool()); item != nil {
				p.PendingDrop = item
				text += fmt.Sprintf("\n🎁 Находка: %s %s", item.Rarity.Emoji(), item.Name)
				d.editOrSend(cb.Chat.ID, msgID, text,
					&transport.SendOpts{ReplyMarkup: dropKeyboard()})
				return
			}
		}
		d.editOrSend(cb.Chat.ID, msgID, text,
			&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
		return
	}

	text := ev.BadText + "\n\n" + d.applyBadEffect(p, ev.Bad)
	d.editOrSend(cb.Chat.ID, msgID, text,
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

func (d *Deps) applyBadEffect(p *world.Player, eff scripting.BadEffect) string {
	switch eff.Type {
	case scripting.BadInfection:
		amount := eff.Amount
		if amount <= 0 {
			amount = 50
		}
		p.AddInfection(-amount)
		return fmt.Sprintf("☣️ Потеряно %d заражения.", amount)
	case scripting.BadSlot:
		slot := p.Inventory.Slot(data.Kind(eff.Slot))
		if slot == nil || *slot == nil {
			return "🎒 Грабители ушли ни с чем."
		}
		name := (*slot).Name
		*slot = nil
		p.ApplyArmorHelmetBonuses()
		return fmt.Sprintf("🎒 Потеряно: %s", name)
	default:
		return "…но обошлось без последствий."
	}
}
