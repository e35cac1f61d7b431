package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/KasumiMercury/primind-health-remind/internal/observability/tracing"
)

// EventPublisher encodes reminder events as JSON and hands them to any
// watermill publisher. Transport-specific constructors wrap it.
type EventPublisher struct {
	publisher message.Publisher
}

func NewEventPublisher(publisher message.Publisher) *EventPublisher {
	return &EventPublisher{publisher: publisher}
}

func (p *EventPublisher) PublishReminderDue(ctx context.Context, event ReminderDueEvent) error {
	return p.publish(ctx, TopicReminderDue, event.ReminderID, event)
}

func (p *EventPublisher) PublishReminderDeleted(ctx context.Context, event ReminderDeletedEvent) error {
	return p.publish(ctx, TopicReminderDeleted, event.ReminderID, event)
}

func (p *EventPublisher) Close() error {
	return p.publisher.Close()
}

func (p *EventPublisher) publish(ctx context.Context, topic, reminderID string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", topic)
	msg.Metadata.Set("reminder_id", reminderID)

	carrier := make(map[string]string)
	tracing.InjectToMap(ctx, carrier)

	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}

	if err := p.publisher.Publish(topic, msg); err != nil {
		slog.Error("failed to publish reminder event",
			slog.String("topic", topic),
			slog.String("reminder_id", reminderID),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("published reminder event",
		slog.String("topic", topic),
		slog.String("reminder_id", reminderID),
		slog.String("message_id", msg.UUID),
	)

	return nil
}
