package notification

import (
	"context"
	"sync"

	"github.com/stomadent/clinic-api/pkg/logger"
	"github.com/stomadent/clinic-api/pkg/metrics"
)

// Notifier fans a message out to every configured channel concurrently.
// Delivery is best-effort: a channel failure is logged, counted, and reported
// as false in the result map, never returned as an error. The clinic
// notification is advisory; the patient-facing action must succeed without it.
type Notifier struct {
	channels []Channel
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewNotifier(log *logger.Logger, m *metrics.Metrics, channels ...Channel) *Notifier {
	return &Notifier{
		channels: channels,
		logger:   log,
		metrics:  m,
	}
}

// Channels returns the names of all configured channels.
func (n *Notifier) Channels() []string {
	names := make([]string, len(n.channels))
	for i, ch := range n.channels {
		names[i] = ch.Name()
	}
	return names
}

// Notify attempts delivery on all channels and returns a channel→sent map.
// It blocks until every channel finished or hit its own timeout; channels run
// concurrently so the total wait is bounded by the slowest single channel.
func (n *Notifier) Notify(ctx context.Context, msg Message) map[string]bool {
	results := make(map[string]bool, len(n.channels))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ch := range n.channels {
		wg.Add(1)
		go func(ch Channel) {
			defer wg.Done()

			if n.metrics != nil {
				n.metrics.NotificationsAttempted.WithLabelValues(ch.Name()).Inc()
			}

			err := ch.Send(ctx, msg)
			if err != nil {
				n.logger.Error(err, "notification delivery failed",
					"channel", ch.Name())
				if n.metrics != nil {
					n.metrics.NotificationsFailed.WithLabelValues(ch.Name()).Inc()
				}
			}

			mu.Lock()
			results[ch.Name()] = err == nil
			mu.Unlock()
		}(ch)
	}

	wg.Wait()
	return results
}
