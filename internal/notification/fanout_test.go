package notification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stomadent/clinic-api/pkg/logger"
)

type stubChannel struct {
	name  string
	err   error
	delay time.Duration
	sent  []Message
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Send(_ context.Context, msg Message) error {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.sent = append(s.sent, msg)
	return s.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func TestNotifyAllChannelsSucceed(t *testing.T) {
	telegram := &stubChannel{name: ChannelTelegram}
	email := &stubChannel{name: ChannelEmail}
	n := NewNotifier(testLogger(), nil, telegram, email)

	results := n.Notify(context.Background(), Message{Text: "hello"})

	assert.Equal(t, map[string]bool{
		ChannelTelegram: true,
		ChannelEmail:    true,
	}, results)
	assert.Len(t, telegram.sent, 1)
	assert.Len(t, email.sent, 1)
}

func TestNotifyFailureIsIsolated(t *testing.T) {
	telegram := &stubChannel{name: ChannelTelegram}
	whatsapp := &stubChannel{name: ChannelWhatsapp, err: errors.New("boom")}
	email := &stubChannel{name: ChannelEmail}
	n := NewNotifier(testLogger(), nil, telegram, whatsapp, email)

	results := n.Notify(context.Background(), Message{Text: "hello"})

	assert.True(t, results[ChannelTelegram])
	assert.False(t, results[ChannelWhatsapp])
	assert.True(t, results[ChannelEmail])
}

func TestNotifyAllFail(t *testing.T) {
	telegram := &stubChannel{name: ChannelTelegram, err: errors.New("down")}
	email := &stubChannel{name: ChannelEmail, err: errors.New("down")}
	n := NewNotifier(testLogger(), nil, telegram, email)

	results := n.Notify(context.Background(), Message{Text: "hello"})

	assert.Equal(t, map[string]bool{
		ChannelTelegram: false,
		ChannelEmail:    false,
	}, results)
}

func TestNotifyNoChannels(t *testing.T) {
	n := NewNotifier(testLogger(), nil)
	results := n.Notify(context.Background(), Message{Text: "hello"})
	assert.Empty(t, results)
}

func TestNotifyRunsConcurrently(t *testing.T) {
	slow := &stubChannel{name: ChannelTelegram, delay: 50 * time.Millisecond}
	alsoSlow := &stubChannel{name: ChannelEmail, delay: 50 * time.Millisecond}
	n := NewNotifier(testLogger(), nil, slow, alsoSlow)

	start := time.Now()
	n.Notify(context.Background(), Message{Text: "hello"})

	assert.Less(t, time.Since(start), 95*time.Millisecond,
		"channels should not run sequentially")
}

func TestChannelNames(t *testing.T) {
	n := NewNotifier(testLogger(), nil,
		&stubChannel{name: ChannelTelegram},
		&stubChannel{name: ChannelWhatsapp})
	assert.Equal(t, []string{ChannelTelegram, ChannelWhatsapp}, n.Channels())
}
