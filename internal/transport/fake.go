package transport

import "fmt"

// SentMessage records one outbound call on the fake.
type SentMessage struct {
	Op        string // "send", "photo", "edit", "caption", "markup", "delete", "callback"
	ChatID    int64
	MessageID int
	Text      string
	Keyboard  *Keyboard
}

// Fake is an in-memory Messenger for tests. It records every call and assigns
// incrementing message ids.
type Fake struct {
	Sent          []SentMessage
	MemberStatus  map[int64]string // userID → status for ChatMemberStatus
	MemberCount   int
	NextMessageID int
	FailEdits     bool // force edit failures to exercise fallback paths
}

func NewFake() *Fake {
	return &Fake{
		MemberStatus:  make(map[int64]string),
		MemberCount:   10,
		NextMessageID: 1,
	}
}

var _ Messenger = (*Fake)(nil)

func (f *Fake) SendText(chatID int64, text string, opts *SendOpts) (int, error) {
	id := f.NextMessageID
	f.NextMessageID++
	f.Sent = append(f.Sent, SentMessage{Op: "send", ChatID: chatID, MessageID: id, Text: text, Keyboard: markup(opts)})
	return id, nil
}

func (f *Fake) SendPhoto(chatID int64, photo Photo, caption string, opts *SendOpts) (int, error) {
	id := f.NextMessageID
	f.NextMessageID++
	f.Sent = append(f.Sent, SentMessage{Op: "photo", ChatID: chatID, MessageID: id, Text: caption, Keyboard: markup(opts)})
	return id, nil
}

func (f *Fake) EditText(chatID int64, messageID int, text string, opts *SendOpts) error {
	if f.FailEdits {
		return fmt.Errorf("edit failed")
	}
	f.Sent = append(f.Sent, SentMessage{Op: "edit", ChatID: chatID, MessageID: messageID, Text: text, Keyboard: markup(opts)})
	return nil
}

func (f *Fake) EditCaption(chatID int64, messageID int, caption string, opts *SendOpts) error {
	if f.FailEdits {
		return fmt.Errorf("edit failed")
	}
	f.Sent = append(f.Sent, SentMessage{Op: "caption", ChatID: chatID, MessageID: messageID, Text: caption, Keyboard: markup(opts)})
	return nil
}

func (f *Fake) EditReplyMarkup(chatID int64, messageID int, kb *Keyboard) error {
	if f.FailEdits {
		return fmt.Errorf("edit failed")
	}
	f.Sent = append(f.Sent, SentMessage{Op: "markup", ChatID: chatID, MessageID: messageID, Keyboard: kb})
	return nil
}

func (f *Fake) DeleteMessage(chatID int64, messageID int) error {
	f.Sent = append(f.Sent, SentMessage{Op: "delete", ChatID: chatID, MessageID: messageID})
	return nil
}

func (f *Fake) AnswerCallback(callbackID string, text string, showAlert bool) error {
	f.Sent = append(f.Sent, SentMessage{Op: "callback", Text: text})
	return nil
}

func (f *Fake) ChatMemberStatus(chatID, userID int64) (string, error) {
	if st, ok := f.MemberStatus[userID]; ok {
		return st, nil
	}
	return MemberStatusLeft, nil
}

func (f *Fake) ChatMemberCount(chatID int64) (int, error) {
	return f.MemberCount, nil
}

// LastText returns the text of the most recent send/edit, or "".
func (f *Fake) LastText() string {
	for i := len(f.Sent) - 1; i >= 0; i-- {
		if f.Sent[i].Text != "" {
			return f.Sent[i].Text
		}
	}
	return ""
}

func markup(opts *SendOpts) *Keyboard {
	if opts == nil {
		return nil
	}
	return opts.ReplyMarkup
}
