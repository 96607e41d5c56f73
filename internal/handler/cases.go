package handler

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/data"
	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

func casesMenu() []data.CaseDef {
	return data.Cases
}

func (d *Deps) cbCases(cb *transport.Callback) {
	p := d.ensureFrom(cb.From)
	d.answer(cb, "", false)
	text := fmt.Sprintf(
		"📦 Кейсы\n\n☣️ Заражение: %d\n🪙 Crimecoins: %d\n🎟 Кейсов за приглашения: %d",
		p.Infection, p.Crimecoins, p.InviteCasesAvailable)
	d.editOrSend(cb.Chat.ID, cb.MessageID, text,
		&transport.SendOpts{ReplyMarkup: casesKeyboard()})
}

func (d *Deps) cbCaseInfo(cb *transport.Callback, id string) {
	c := data.CaseByType(data.CaseType(id))
	if c == nil {
		d.answer(cb, "Такого кейса нет.", true)
		return
	}
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		fmt.Sprintf("📦 %s\n\n%s\n\n💰 Цена: %s", c.Title, c.Description, casePriceText(c)),
		&transport.SendOpts{ReplyMarkup: caseKeyboard(id)})
}

func casePriceText(c *data.CaseDef) string {
	switch c.Currency {
	case data.CurrencyFree:
		return "бесплатно, раз в сутки"
	case data.CurrencyInvites:
		return fmt.Sprintf("%d приглашение", c.Cost)
	case data.CurrencyCrimecoins:
		return fmt.Sprintf("%d crimecoins", c.Cost)
	default:
		return fmt.Sprintf("%d заражения", c.Cost)
	}
}

func (d *Deps) cbCasePreview(cb *transport.Callback, id string) {
	c := data.CaseByType(data.CaseType(id))
	if c == nil {
		d.answer(cb, "Такого кейса нет.", true)
		return
	}
	d.answer(cb, "", false)
	pool := d.Catalog.ItemsForCase(c.Type, c.IncludeSigns)
	var b strings.Builder
	fmt.Fprintf(&b, "👀 %s, возможное содержимое:\n\n", c.Title)
	for _, it := range pool {
		fmt.Fprintf(&b, "%s %s\n", it.Rarity.Emoji(), it.Name)
	}
	if len(pool) == 0 {
		b.WriteString("Пул пока пуст.")
	}
	d.editOrSend(cb.Chat.ID, cb.MessageID, b.String(),
		&transport.SendOpts{ReplyMarkup: caseKeyboard(id)})
}

func (d *Deps) cbCaseOpen(cb *transport.Callback, id string) {
	p := d.ensureFrom(cb.From)
	c := data.CaseByType(data.CaseType(id))
	if c == nil {
		d.answer(cb, "Такого кейса нет.", true)
		return
	}
	if msg := d.chargeCase(p, c); msg != "" {
		d.answer(cb, msg, true)
		return
	}

	item := d.Loot.PickCaseItem(d.Catalog, c.Type)
	if item == nil {
		// Should not happen with a loaded catalog; refund the charge.
		d.refundCase(p, c)
		d.answer(cb, "Кейс оказался пуст, средства возвращены.", true)
		d.Log.Warn("empty case pool", zap.String("case", id))
		return
	}
	d.answer(cb, "", false)
	p.PendingDrop = item
	d.editOrSend(cb.Chat.ID, cb.MessageID,
		fmt.Sprintf("📦 %s открыт!\n\n🎁 Внутри: %s %s", c.Title, item.Rarity.Emoji(), item.Name),
		&transport.SendOpts{ReplyMarkup: dropKeyboard()})
}

// chargeCase validates gates and debits the price. Returns a user-visible
// refusal, or "" when the charge went through.
func (d *Deps) chargeCase(p *world.Player, c *data.CaseDef) string {
	switch c.Currency {
	case data.CurrencyFree:
		now := d.Now().Unix()
		if now-p.LastGiftTime < int64(freeGiftCooldown.Seconds()) {
			return "⏳ Бесплатный кейс будет доступен позже, загляни завтра."
		}
		if ch := d.Cfg.Bot.GiftChannelID; ch != 0 {
			status, err := d.Msg.ChatMemberStatus(ch, p.ID)
			if err != nil || !transport.IsSubscribed(status) {
				return "📢 Кейс выдаётся за подписку на наш канал."
			}
		}
		p.LastGiftTime = now
		return ""
	case data.CurrencyInvites:
		if p.InviteCasesAvailable < c.Cost {
			return "🎟 Нет кейсов за приглашения. Зови друзей по своей ссылке!"
		}
		p.InviteCasesAvailable -= c.Cost
		p.InviteCasesOpened += c.Cost
		return ""
	case data.CurrencyCrimecoins:
		if p.Crimecoins < c.Cost {
			return fmt.Sprintf("🪙 Не хватает crimecoins (нужно %d).", c.Cost)
		}
		p.Crimecoins -= c.Cost
		return ""
	default:
		if p.Infection < c.Cost {
			return fmt.Sprintf("☣️ Не хватает заражения (нужно %d).", c.Cost)
		}
		p.AddInfection(-c.Cost)
		return ""
	}
}

func (d *Deps) refundCase(p *world.Player, c *data.CaseDef) {
	switch c.Currency {
	case data.CurrencyFree:
		p.LastGiftTime = 0
	case data.CurrencyInvites:
		p.InviteCasesAvailable += c.Cost
		p.InviteCasesOpened -= c.Cost
	case data.CurrencyCrimecoins:
		p.Crimecoins += c.Cost
	default:
		p.AddInfection(c.Cost)
	}
}
