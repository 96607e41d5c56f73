package handler

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/crimecore/server/internal/transport"
	"github.com/crimecore/server/internal/world"
)

// Broadcast statuses.
const (
	broadcastAwaiting = "awaiting"
	broadcastPreview  = "preview"
)

// BroadcastState is one admin's /sendall flow: the next plain message is
// captured as the broadcast text and previewed before sending.
type BroadcastState struct {
	Status string
	Text   string
	ChatID int64
}

func (d *Deps) requireAdmin(cmd *transport.Command) bool {
	if d.Cfg.IsAdmin(cmd.From.ID) {
		return true
	}
	d.sendText(cmd.Chat.ID, "⛔ Команда только для администрации.", nil)
	return false
}

func (d *Deps) cmdAdminGive(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	p := d.ensureFrom(cmd.From)
	d.adminGiveItem(cmd.Chat.ID, p, strings.Join(cmd.Args, " "))
}

func (d *Deps) cmdGiveTo(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	if len(cmd.Args) < 2 {
		d.sendText(cmd.Chat.ID, "Использование: /giveto <id> <название>", nil)
		return
	}
	target := d.World.PlayerByIdent(cmd.Args[0])
	if target == nil {
		d.sendText(cmd.Chat.ID, "🤷 Игрок не найден.", nil)
		return
	}
	d.adminGiveItem(cmd.Chat.ID, target, strings.Join(cmd.Args[1:], " "))
}

func (d *Deps) adminGiveItem(chatID int64, target *world.Player, name string) {
	item := d.Catalog.FindByName(name)
	if item == nil {
		d.sendText(chatID, "🤷 Предмет не найден: "+name, nil)
		return
	}
	prev := target.Equip(item.Clone())
	text := fmt.Sprintf("✅ %s получает %s", target.DisplayName(), item.Name)
	if prev != nil {
		text += fmt.Sprintf(" (вместо %s)", prev.Name)
	}
	d.Log.Info("admin item grant",
		zap.Int64("player", target.ID), zap.String("item", item.Name))
	d.sendText(chatID, text, nil)
}

func (d *Deps) cmdPointsTo(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	if len(cmd.Args) != 2 {
		d.sendText(cmd.Chat.ID, "Использование: /pointsto <id> <число>", nil)
		return
	}
	target := d.World.PlayerByIdent(cmd.Args[0])
	amount, err := strconv.Atoi(cmd.Args[1])
	if target == nil || err != nil {
		d.sendText(cmd.Chat.ID, "🤷 Игрок не найден или число кривое.", nil)
		return
	}
	target.AddInfection(amount)
	d.Log.Info("admin infection grant",
		zap.Int64("player", target.ID), zap.Int("amount", amount))
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"✅ У %s теперь %d заражения.", target.DisplayName(), target.Infection), nil)
}

func (d *Deps) cmdCrimecoins(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	if len(cmd.Args) != 2 {
		d.sendText(cmd.Chat.ID, "Использование: /crimecoins <id или @ник> <число>", nil)
		return
	}
	target := d.World.PlayerByIdent(cmd.Args[0])
	amount, err := strconv.Atoi(cmd.Args[1])
	if target == nil || err != nil {
		d.sendText(cmd.Chat.ID, "🤷 Игрок не найден или число кривое.", nil)
		return
	}
	target.Crimecoins += amount
	if target.Crimecoins < 0 {
		target.Crimecoins = 0
	}
	d.sendText(cmd.Chat.ID, fmt.Sprintf(
		"✅ У %s теперь %d crimecoins.", target.DisplayName(), target.Crimecoins), nil)
}

func (d *Deps) cmdSendAll(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	d.Sessions.Broadcasts[cmd.From.ID] = &BroadcastState{
		Status: broadcastAwaiting,
		ChatID: cmd.Chat.ID,
	}
	d.sendText(cmd.Chat.ID, "📣 Пришли текст рассылки следующим сообщением.", nil)
}

// captureBroadcast consumes the admin's next plain message as broadcast
// text. Reports whether the message was consumed.
func (d *Deps) captureBroadcast(msg *transport.Message) bool {
	bc, ok := d.Sessions.Broadcasts[msg.From.ID]
	if !ok || bc.Status != broadcastAwaiting || msg.Text == "" {
		return false
	}
	bc.Status = broadcastPreview
	bc.Text = msg.Text
	d.sendText(bc.ChatID, "📣 Предпросмотр:\n\n"+bc.Text,
		&transport.SendOpts{ReplyMarkup: broadcastConfirmKeyboard()})
	return true
}

func (d *Deps) cbAdminBroadcast(cb *transport.Callback, action string) {
	bc, ok := d.Sessions.Broadcasts[cb.From.ID]
	if !ok || bc.Status != broadcastPreview {
		d.answer(cb, "Рассылка не готовится.", true)
		return
	}
	delete(d.Sessions.Broadcasts, cb.From.ID)
	if action != "confirm" {
		d.answer(cb, "Отменено.", false)
		return
	}
	d.answer(cb, "", false)

	ids := make([]int64, 0, len(d.World.Players))
	for id := range d.World.Players {
		ids = append(ids, id)
	}
	text := bc.Text
	adminChat := bc.ChatID
	// Deliveries go off the loop; a big roster takes a while.
	go func() {
		sent := 0
		for _, id := range ids {
			if _, err := d.Msg.SendText(id, text, nil); err == nil {
				sent++
			}
		}
		d.Loop.Post(func() {
			d.Log.Info("broadcast done", zap.Int("sent", sent), zap.Int("total", len(ids)))
			d.sendText(adminChat, fmt.Sprintf("📣 Разослано %d из %d.", sent, len(ids)), nil)
		})
	}()
}

func (d *Deps) cmdReboot(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	if d.Restart == nil {
		d.sendText(cmd.Chat.ID, "Перезапуск не настроен.", nil)
		return
	}
	d.sendText(cmd.Chat.ID, "🔄 Перезапускаюсь...", nil)
	if err := d.Restart.Reboot(); err != nil {
		d.Log.Error("reboot failed", zap.Error(err))
		d.sendText(cmd.Chat.ID, "Не вышло: "+err.Error(), nil)
	}
}

func (d *Deps) cmdPull(cmd *transport.Command) {
	if !d.requireAdmin(cmd) {
		return
	}
	if d.Restart == nil {
		d.sendText(cmd.Chat.ID, "Обновление не настроено.", nil)
		return
	}
	if err := d.Restart.Pull(); err != nil {
		d.Log.Error("pull failed", zap.Error(err))
		d.sendText(cmd.Chat.ID, "Не вышло: "+err.Error(), nil)
		return
	}
	d.sendText(cmd.Chat.ID, "⬇️ Код обновлён.", nil)
}
