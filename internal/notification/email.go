package notification

import (
	"context"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/stomadent/clinic-api/internal/config"
)

// EmailChannel mails the clinic's admin notification address.
type EmailChannel struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewEmailChannel(cfg config.SMTPConfig, to string) *EmailChannel {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	return &EmailChannel{
		dialer: dialer,
		from:   cfg.From,
		to:     to,
	}
}

func (c *EmailChannel) Name() string {
	return ChannelEmail
}

func (c *EmailChannel) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", c.from)
	m.SetHeader("To", c.to)
	m.SetHeader("Subject", msg.Subject)
	if msg.HTML != "" {
		m.SetBody("text/html", msg.HTML)
		m.AddAlternative("text/plain", msg.Text)
	} else {
		m.SetBody("text/plain", msg.Text)
	}

	// gomail has no context support; run the dial in a goroutine and bound it
	// so a slow SMTP server cannot stall the request past the channel budget.
	done := make(chan error, 1)
	go func() {
		done <- c.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return context.DeadlineExceeded
	}
}
