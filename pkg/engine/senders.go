package engine

import "context"

// EmailSender delivers a rendered template to an email address
type EmailSender interface {
	SendTemplated(ctx context.Context, to string, template Template, vars Variables, language string) error
}

// SMSSender delivers a plain text message to a phone number
type SMSSender interface {
	Send(ctx context.Context, to, text string) error
}

// ChatSender delivers a plain text message to a chat address. Senders report
// a ready state; Send fails fast with ErrNotReady while not ready.
type ChatSender interface {
	Ready() bool
	Send(ctx context.Context, to, text string) error
}

// Senders bundles the channel sender collaborators. Any of them may be nil,
// in which case the corresponding channel is skipped during fan-out.
type Senders struct {
	Email EmailSender
	SMS   SMSSender
	Chat  ChatSender
}
