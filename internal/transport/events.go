package transport

// User identifies the sender of an inbound event.
type User struct {
	ID       int64
	Username string
	Name     string
}

// Chat identifies where an event happened.
type Chat struct {
	ID   int64
	Type string // "private", "group", "supergroup", "channel"
}

// IsPrivate reports a direct-message chat.
func (c Chat) IsPrivate() bool {
	return c.Type == "private" || c.Type == ""
}

// Command is a parsed bot command ("/hunt arg1 arg2").
type Command struct {
	Name string // without the leading slash
	Args []string
	From User
	Chat Chat
}

// Callback is an inline-button tap.
type Callback struct {
	ID        string
	Data      string
	From      User
	Chat      Chat
	MessageID int
}

// Message is a plain inbound text message (used by the broadcast flow).
type Message struct {
	Text string
	From User
	Chat Chat
}

// Event is the sum of inbound event kinds; exactly one field is non-nil.
type Event struct {
	Command  *Command
	Callback *Callback
	Message  *Message
}
