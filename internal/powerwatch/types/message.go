package types

import "time"

// Message is one inbound chat message, independent of the transport.
type Message struct {
	ID       int
	ChatID   int64
	SenderID int64 // 0 when the transport could not identify the sender
	SentAt   time.Time
	Text     string

	// Forward is set when the message was forwarded from elsewhere.
	Forward *ForwardOrigin
}

// ForwardOrigin describes where a forwarded message came from.  Known is
// false for channel posts and senders who hide their account.
type ForwardOrigin struct {
	UserID int64
	Known  bool
}

func (m Message) IsForward() bool { return m.Forward != nil }
