package notifier

import (
	"context"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
)

// PubSubChannel publishes a reminder.due event for downstream consumers such
// as a push gateway.
type PubSubChannel struct {
	publisher pubsub.Publisher
}

func NewPubSubChannel(publisher pubsub.Publisher) *PubSubChannel {
	return &PubSubChannel{publisher: publisher}
}

func (c *PubSubChannel) Name() string {
	return "event_bus"
}

func (c *PubSubChannel) Notify(ctx context.Context, n domain.Notification) error {
	return c.publisher.PublishReminderDue(ctx, pubsub.NewReminderDueEvent(n))
}
