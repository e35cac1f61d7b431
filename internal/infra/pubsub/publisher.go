package pubsub

import (
	"context"
	"io"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

type Publisher interface {
	PublishReminderDue(ctx context.Context, event ReminderDueEvent) error
	PublishReminderDeleted(ctx context.Context, event ReminderDeletedEvent) error
	io.Closer
}
