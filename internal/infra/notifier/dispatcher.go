package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/metrics"
)

const DefaultChannelTimeout = 5 * time.Second

// Channel is one way of telling the user about a due reminder.
type Channel interface {
	Name() string
	Notify(ctx context.Context, n domain.Notification) error
}

// Dispatcher fans a notification out to every channel concurrently. Each
// channel gets its own deadline; one that errors, panics or overruns is
// recorded as unavailable and never holds up the others.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	metrics  *metrics.ReminderMetrics
}

func NewDispatcher(timeout time.Duration, m *metrics.ReminderMetrics, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}

	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		metrics:  m,
	}
}

func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}

	return names
}

func (d *Dispatcher) Deliver(ctx context.Context, n domain.Notification) domain.DeliveryResult {
	outcomes := make([]domain.ChannelOutcome, len(d.channels))

	var wg sync.WaitGroup
	for i, ch := range d.channels {
		wg.Add(1)

		go func() {
			defer wg.Done()

			outcomes[i] = d.deliverOne(ctx, ch, n)
		}()
	}

	wg.Wait()

	for _, o := range outcomes {
		d.metrics.RecordDelivery(ctx, o.Channel, o.Delivered)

		if o.Err != nil {
			slog.WarnContext(ctx, "notification channel failed",
				slog.String("event", "dispatch.channel.fail"),
				slog.String("channel", o.Channel),
				slog.String("reminder_id", n.ReminderID.String()),
				slog.String("error", o.Err.Error()),
			)
		}
	}

	return domain.DeliveryResult{Outcomes: outcomes}
}

func (d *Dispatcher) deliverOne(ctx context.Context, ch Channel, n domain.Notification) domain.ChannelOutcome {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("panic: %v", rec)
			}
		}()

		done <- ch.Notify(ctx, n)
	}()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		return domain.ChannelOutcome{
			Channel: ch.Name(),
			Err:     fmt.Errorf("%w: %s: %v", domain.ErrChannelUnavailable, ch.Name(), err),
		}
	}

	return domain.ChannelOutcome{Channel: ch.Name(), Delivered: true}
}
