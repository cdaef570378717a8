package notification

import (
	"context"
)

// Message is one rendered notification. Text is mandatory; Subject and HTML
// are used only by channels that support them.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Channel delivers a message to one configured destination type. Send must
// bound its own network time; the fan-out never enforces an outer deadline
// beyond the request context.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Channel names used in responses and configuration.
const (
	ChannelTelegram = "telegram"
	ChannelWhatsapp = "whatsapp"
	ChannelEmail    = "email"
)
