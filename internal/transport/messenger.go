package transport

import "errors"

// ErrNotModified is returned by edit operations when the message content is
// already what was requested. Callers treat it as success.
var ErrNotModified = errors.New("message is not modified")

// Button is one inline keyboard button: callback data or URL, never both.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is an inline keyboard layout.
type Keyboard struct {
	Rows [][]Button
}

// NewKeyboard builds a keyboard from rows of buttons.
func NewKeyboard(rows ...[]Button) *Keyboard {
	return &Keyboard{Rows: rows}
}

// Row is a convenience constructor for one keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Btn builds a callback button.
func Btn(text, data string) Button {
	return Button{Text: text, Data: data}
}

// URLBtn builds a link button.
func URLBtn(text, url string) Button {
	return Button{Text: text, URL: url}
}

// SendOpts tweak an outbound message.
type SendOpts struct {
	ParseMode   string // "" or "HTML"
	ReplyMarkup *Keyboard
}

// Photo is image content by URL or raw bytes; URL wins when both are set.
type Photo struct {
	URL   string
	Bytes []byte
}

// Chat member statuses relevant to gates.
const (
	MemberStatusMember  = "member"
	MemberStatusAdmin   = "administrator"
	MemberStatusCreator = "creator"
	MemberStatusLeft    = "left"
)

// Messenger is the chat transport the engine talks through. The Telegram
// implementation lives in transport/telegram; tests use the in-memory fake.
type Messenger interface {
	SendText(chatID int64, text string, opts *SendOpts) (int, error)
	SendPhoto(chatID int64, photo Photo, caption string, opts *SendOpts) (int, error)
	EditText(chatID int64, messageID int, text string, opts *SendOpts) error
	EditCaption(chatID int64, messageID int, caption string, opts *SendOpts) error
	EditReplyMarkup(chatID int64, messageID int, kb *Keyboard) error
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID string, text string, showAlert bool) error
	ChatMemberStatus(chatID, userID int64) (string, error)
	ChatMemberCount(chatID int64) (int, error)
}

// IsSubscribed reports whether a member status passes the subscription gate.
func IsSubscribed(status string) bool {
	switch status {
	case MemberStatusMember, MemberStatusAdmin, MemberStatusCreator:
		return true
	}
	return false
}
