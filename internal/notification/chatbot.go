package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const defaultBotAPIBase = "https://api.telegram.org"

// ChatBotChannel sends a message through the Telegram bot API to one or more
// chat ids. Both the "telegram" and the "whatsapp" channels are instances of
// this type with their own token and recipients; channel identity comes from
// configuration, not from which token happens to be reused.
type ChatBotChannel struct {
	name       string
	token      string
	recipients []string
	baseURL    string
	client     *http.Client
}

type ChatBotOption func(*ChatBotChannel)

// WithBaseURL points the channel at a different bot API host. Used by tests.
func WithBaseURL(url string) ChatBotOption {
	return func(c *ChatBotChannel) {
		c.baseURL = url
	}
}

func NewChatBotChannel(name, token string, recipients []string, opts ...ChatBotOption) *ChatBotChannel {
	c := &ChatBotChannel{
		name:       name,
		token:      token,
		recipients: recipients,
		baseURL:    defaultBotAPIBase,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ChatBotChannel) Name() string {
	return c.name
}

// Send delivers to every recipient independently; one failing chat id does not
// block the rest. The channel reports success if at least one recipient got
// the message.
func (c *ChatBotChannel) Send(ctx context.Context, msg Message) error {
	if len(c.recipients) == 0 {
		return fmt.Errorf("%s: no recipients configured", c.name)
	}

	var errs []error
	delivered := 0
	for _, chatID := range c.recipients {
		if err := c.sendOne(ctx, chatID, msg.Text); err != nil {
			errs = append(errs, fmt.Errorf("chat %s: %w", chatID, err))
			continue
		}
		delivered++
	}

	if delivered == 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *ChatBotChannel) sendOne(ctx context.Context, chatID, text string) error {
	payload := map[string]string{
		"chat_id": chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("bot API returned status %d", resp.StatusCode)
	}
	return nil
}
