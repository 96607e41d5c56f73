package handler

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

const welcomeText = `☣️ Добро пожаловать в Зону, выживший.

Здесь охотятся на мутантов, собирают снаряжение, вступают в кланы и дерутся за заражение. Начни с охоты — кнопка ниже.`

func (d *Deps) cmdStart(cmd *transport.Command) {
	_, existed := d.World.Players[cmd.From.ID]
	p := d.ensureFrom(cmd.From)

	if ref := arg0(cmd.Args); !existed && strings.HasPrefix(ref, "ref_") {
		d.applyReferral(p, strings.TrimPrefix(ref, "ref_"))
	}

	d.sendText(cmd.Chat.ID, welcomeText, &transport.SendOpts{ReplyMarkup: mainMenuKeyboard()})
}

// applyReferral credits the inviter with an invite case. Self-referrals and
// repeat referrals of the same player are ignored.
func (d *Deps) applyReferral(newcomer *world.Player, rawID string) {
	inviterID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || inviterID == newcomer.ID {
		return
	}
	inviter, ok := d.World.Players[inviterID]
	if !ok {
		return
	}
	for _, id := range inviter.InvitedUserIDs {
		if id == newcomer.ID {
			return
		}
	}
	inviter.InvitedUserIDs = append(inviter.InvitedUserIDs, newcomer.ID)
	inviter.InviteCasesAvailable++
	d.Log.Info("referral credited",
		zap.Int64("inviter", inviterID), zap.Int64("newcomer", newcomer.ID))
	d.sendText(inviterID, fmt.Sprintf(
		"🎁 По твоей ссылке пришёл %s! Тебе доступен кейс за приглашение.",
		newcomer.DisplayName()), nil)
}

func (d *Deps) cmdPlay(cmd *transport.Command) {
	d.ensureFrom(cmd.From)
	d.sendText(cmd.Chat.ID, "☣️ Главное меню", &transport.SendOpts{ReplyMarkup: mainMenuKeyboard()})
}

func (d *Deps) cbPlay(cb *transport.Callback) {
	d.ensureFrom(cb.From)
	d.answer(cb, "", false)
	d.editOrSend(cb.Chat.ID, cb.MessageID, "☣️ Главное меню",
		&transport.SendOpts{ReplyMarkup: mainMenuKeyboard()})
}

func (d *Deps) cbCommunity(cb *transport.Callback) {
	d.answer(cb, "", false)
	text := fmt.Sprintf(`🌍 Сообщество Crimecore

Приглашай выживших по личной ссылке и получай кейсы:
https://t.me/%s?start=ref_%d

Поддержать проект: %s`,
		d.BotUsername, cb.From.ID, d.Cfg.Bot.DonationContact)
	d.editOrSend(cb.Chat.ID, cb.MessageID, text,
		&transport.SendOpts{ReplyMarkup: backToMenuKeyboard()})
}

func (d *Deps) cmdReport(cmd *transport.Command) {
	d.sendText(cmd.Chat.ID,
		"📝 О багах и идеях пиши сюда: "+d.Cfg.Bot.DonationContact, nil)
}
