package handler

import (
	"fmt"
	"math"
	"strconv"

	"github.com/crimecore/server/internal/scripting"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// dangerExitChance is 10/30/60% for the first three steps, then grows by 10%
// per extra step, capped at 70%.
func dangerExitChance(step int) float64 {
	switch step {
	case 1:
		return 0.10
	case 2:
		return 0.30
	case 3:
		return 0.60
	default:
		c := 0.60 + 0.10*float64(step-3)
		return math.Min(c, 0.70)
	}
}

func (d *Deps) startDanger(p *world.Player, cb *transport.Callback) {
	scenarios := d.Scripts.DangerScenarios()
	if len(scenarios) == 0 {
		d.startMonsterFight(p, cb)
		return
	}
	si := d.Rng.Intn(len(scenarios))
	sc := scenarios[si]
	bi := d.Rng.Intn(len(sc.Branches))

	p.CurrentDanger = &world.DangerState{ScenarioID: si, BranchID: bi, Step: 1}
	text := fmt.Sprintf("⚠️ %s\n\n%s\n\n%s", sc.Name, sc.Intro, d.dangerPrompt(p))
	p.CurrentDangerMsgID = d.editOrSend(cb.Chat.ID, cb.MessageID, text,
		&transport.SendOpts{ReplyMarkup: dangerKeyboard(d.dangerStep(p).Options)})
}

func (d *Deps) dangerStep(p *world.Player) *scripting.DangerStep {
	ds := p.CurrentDanger
	sc := d.Scripts.Scenario(ds.ScenarioID)
	if sc == nil || ds.BranchID >= len(sc.Branches) {
		return nil
	}
	steps := sc.Branches[ds.BranchID].Steps
	// Branches define three steps; later steps loop the last one.
	i := ds.Step - 1
	if i >= len(steps) {
		i = len(steps) - 1
	}
	return &steps[i]
}

func (d *Deps) dangerPrompt(p *world.Player) string {
	ds := p.CurrentDanger
	step := d.dangerStep(p)
	return fmt.Sprintf("%s\n\n❤️ HP: %d/%d\n🚪 Шаг %d, шанс выхода: %.0f%%",
		step.Prompt, p.HP, p.MaxHP, ds.Step, dangerExitChance(ds.Step)*100)
}

// cbDangerMove applies one danger-room move: step damage first, then the
// exit roll. The chosen option flavors the text only; the odds are fixed.
func (d *Deps) cbDangerMove(cb *transport.Callback, rawOption string) {
	p := d.ensureFrom(cb.From)
	if p.CurrentDanger == nil {
		d.answer(cb, "Ты уже выбрался.", true)
		return
	}
	if _, err := strconv.Atoi(rawOption); err != nil {
		d.answer(cb, "", false)
		return
	}
	d.answer(cb, "", false)

	damage := int(math.Ceil(float64(p.MaxHP) * dangerStepDamage))
	p.HP -= damage
	if p.HP <= 0 {
		msgID := p.CurrentDangerMsgID
		p.ClearCombatState()
		p.AddInfection(-dangerDeathToll)
		p.ResetSurvival()
		p.HP = p.MaxHP
		d.editOrSend(cb.Chat.ID, msgID,
			fmt.Sprintf("☠️ Аномалия дожгла остатки сил. -%d заражения, дни выживания обнулились.", dangerDeathToll),
			&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
		return
	}

	ds := p.CurrentDanger
	if d.Loot.Chance(dangerExitChance(ds.Step)) {
		msgID := p.CurrentDangerMsgID
		p.ClearCombatState()
		p.AddInfection(dangerExitReward)
		p.GrantSurvivalDay()
		text := fmt.Sprintf("🚪 Ты нашёл выход! +%d заражения, +1 день выживания.", dangerExitReward)
		if d.Loot.Chance(dangerItemChance) {
			if item := d.Loot.WeightedPick(d.Catalog.DropPool()); item != nil {
				p.PendingDrop = item
				text += fmt.Sprintf("\n🎁 По пути найдено: %s %s", item.Rarity.Emoji(), item.Name)
				d.editOrSend(cb.Chat.ID, msgID, text,
					&transport.SendOpts{ReplyMarkup: dropKeyboard()})
				return
			}
		}
		d.editOrSend(cb.Chat.ID, msgID, text,
			&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
		return
	}

	ds.Step++
	p.CurrentDangerMsgID = d.editOrSend(cb.Chat.ID, p.CurrentDangerMsgID,
		fmt.Sprintf("➡️ Проход завален, идём дальше. Потеряно %d HP.\n\n%s", damage, d.dangerPrompt(p)),
		&transport.SendOpts{ReplyMarkup: dangerKeyboard(d.dangerStep(p).Options)})
}
