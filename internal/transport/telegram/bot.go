package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/crimecore/server/internal/transport"
)

// Bot adapts the Telegram Bot API to the transport.Messenger capability.
type Bot struct {
	api *tgbotapi.BotAPI
	log *zap.Logger
}

func New(token string, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, log: log}, nil
}

// Username returns the bot account's username (referral links need it).
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

var _ transport.Messenger = (*Bot)(nil)

func (b *Bot) SendText(chatID int64, text string, opts *transport.SendOpts) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	applyOpts(&msg.ParseMode, &msg.ReplyMarkup, opts)
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) SendPhoto(chatID int64, photo transport.Photo, caption string, opts *transport.SendOpts) (int, error) {
	var file tgbotapi.RequestFileData
	if photo.URL != "" {
		file = tgbotapi.FileURL(photo.URL)
	} else {
		file = tgbotapi.FileBytes{Name: "image.png", Bytes: photo.Bytes}
	}
	msg := tgbotapi.NewPhoto(chatID, file)
	msg.Caption = caption
	applyOpts(&msg.ParseMode, &msg.ReplyMarkup, opts)
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) EditText(chatID int64, messageID int, text string, opts *transport.SendOpts) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if opts != nil {
		edit.ParseMode = opts.ParseMode
		if kb := toInlineKeyboard(opts.ReplyMarkup); kb != nil {
			edit.ReplyMarkup = kb
		}
	}
	_, err := b.api.Send(edit)
	return editErr(err)
}

func (b *Bot) EditCaption(chatID int64, messageID int, caption string, opts *transport.SendOpts) error {
	edit := tgbotapi.NewEditMessageCaption(chatID, messageID, caption)
	if opts != nil {
		edit.ParseMode = opts.ParseMode
		if kb := toInlineKeyboard(opts.ReplyMarkup); kb != nil {
			edit.ReplyMarkup = kb
		}
	}
	_, err := b.api.Send(edit)
	return editErr(err)
}

func (b *Bot) EditReplyMarkup(chatID int64, messageID int, kb *transport.Keyboard) error {
	markup := toInlineKeyboard(kb)
	if markup == nil {
		markup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, *markup)
	_, err := b.api.Send(edit)
	return editErr(err)
}

func (b *Bot) DeleteMessage(chatID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (b *Bot) AnswerCallback(callbackID string, text string, showAlert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = showAlert
	_, err := b.api.Request(cb)
	return err
}

func (b *Bot) ChatMemberStatus(chatID, userID int64) (string, error) {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

func (b *Bot) ChatMemberCount(chatID int64) (int, error) {
	return b.api.GetChatMembersCount(tgbotapi.ChatMemberCountConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
}

// Run polls for updates and feeds them to handle until ctx is done.
func (b *Bot) Run(ctx context.Context, handle func(transport.Event)) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if ev, valid := convert(upd); valid {
				handle(ev)
			}
		}
	}
}

func convert(upd tgbotapi.Update) (transport.Event, bool) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		ev := transport.Event{Callback: &transport.Callback{
			ID:   cq.ID,
			Data: cq.Data,
			From: toUser(cq.From),
		}}
		if cq.Message != nil {
			ev.Callback.Chat = toChat(cq.Message.Chat)
			ev.Callback.MessageID = cq.Message.MessageID
		}
		return ev, true

	case upd.Message != nil && upd.Message.IsCommand():
		msg := upd.Message
		var args []string
		if rest := strings.TrimSpace(msg.CommandArguments()); rest != "" {
			args = strings.Fields(rest)
		}
		return transport.Event{Command: &transport.Command{
			Name: msg.Command(),
			Args: args,
			From: toUser(msg.From),
			Chat: toChat(msg.Chat),
		}}, true

	case upd.Message != nil:
		msg := upd.Message
		return transport.Event{Message: &transport.Message{
			Text: msg.Text,
			From: toUser(msg.From),
			Chat: toChat(msg.Chat),
		}}, true
	}
	return transport.Event{}, false
}

func toUser(u *tgbotapi.User) transport.User {
	if u == nil {
		return transport.User{}
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return transport.User{ID: u.ID, Username: u.UserName, Name: name}
}

func toChat(c *tgbotapi.Chat) transport.Chat {
	if c == nil {
		return transport.Chat{}
	}
	return transport.Chat{ID: c.ID, Type: c.Type}
}

func toInlineKeyboard(kb *transport.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if kb == nil || len(kb.Rows) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb.Rows))
	for _, row := range kb.Rows {
		line := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			if btn.URL != "" {
				line = append(line, tgbotapi.NewInlineKeyboardButtonURL(btn.Text, btn.URL))
				continue
			}
			line = append(line, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, line)
	}
	return &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func applyOpts(parseMode *string, markup *any, opts *transport.SendOpts) {
	if opts == nil {
		return
	}
	*parseMode = opts.ParseMode
	if kb := toInlineKeyboard(opts.ReplyMarkup); kb != nil {
		*markup = *kb
	}
}

// editErr maps Telegram's idempotent-edit echo to the sentinel.
func editErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "message is not modified") {
		return transport.ErrNotModified
	}
	return err
}
