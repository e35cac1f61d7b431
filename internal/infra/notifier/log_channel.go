package notifier

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

// LogChannel writes a system log alert for every due reminder.
type LogChannel struct{}

func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

func (c *LogChannel) Name() string {
	return "log"
}

func (c *LogChannel) Notify(ctx context.Context, n domain.Notification) error {
	slog.InfoContext(ctx, "reminder due",
		slog.String("event", "reminder.alert"),
		slog.String("reminder_id", n.ReminderID.String()),
		slog.String("type", n.Category.String()),
		slog.String("title", n.Title),
		slog.String("repeat", n.Recurrence.String()),
		slog.Time("occurs_at", n.OccursAt),
		slog.Time("due_at", n.DueAt),
	)

	return nil
}
