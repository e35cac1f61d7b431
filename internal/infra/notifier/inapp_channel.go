package notifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

// Banner is what an in-app client renders for a due reminder.
type Banner struct {
	ReminderID     string    `json:"reminderId"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Notes          string    `json:"notes,omitempty"`
	Repeat         string    `json:"repeat"`
	AdvanceMinutes int       `json:"advanceMinutes"`
	OccursAt       time.Time `json:"occursAt"`
}

func NewBanner(n domain.Notification) Banner {
	return Banner{
		ReminderID:     n.ReminderID.String(),
		Type:           n.Category.String(),
		Title:          n.Title,
		Notes:          n.Notes,
		Repeat:         n.Recurrence.String(),
		AdvanceMinutes: n.AdvanceMins,
		OccursAt:       n.OccursAt,
	}
}

// Broadcaster holds the live in-app subscriptions. A subscriber whose buffer
// is full misses the banner rather than blocking the dispatcher.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[chan Banner]struct{}
	buffer      int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 16
	}

	return &Broadcaster{
		subscribers: make(map[chan Banner]struct{}),
		buffer:      buffer,
	}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener goes away; it closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Banner, func()) {
	ch := make(chan Banner, b.buffer)

	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subscribers)
}

// Broadcast returns how many subscribers received the banner.
func (b *Broadcaster) Broadcast(banner Banner) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	delivered := 0
	for ch := range b.subscribers {
		select {
		case ch <- banner:
			delivered++
		default:
			slog.Warn("in-app subscriber is full, banner dropped",
				slog.String("reminder_id", banner.ReminderID),
			)
		}
	}

	return delivered
}

// InAppChannel pushes banners to connected clients. Having no client
// connected is not a failure.
type InAppChannel struct {
	broadcaster *Broadcaster
}

func NewInAppChannel(b *Broadcaster) *InAppChannel {
	return &InAppChannel{broadcaster: b}
}

func (c *InAppChannel) Name() string {
	return "in_app"
}

func (c *InAppChannel) Notify(ctx context.Context, n domain.Notification) error {
	delivered := c.broadcaster.Broadcast(NewBanner(n))

	slog.DebugContext(ctx, "in-app banner broadcast",
		slog.String("reminder_id", n.ReminderID.String()),
		slog.Int("subscribers", delivered),
	)

	return nil
}
