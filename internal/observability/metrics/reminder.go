package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"

	TickCompleted = "completed"
	TickFailed    = "failed"
	TickSkipped   = "skipped"
)

// ReminderMetrics counts channel deliveries and scheduler ticks.
type ReminderMetrics struct {
	deliveries metric.Int64Counter
	ticks      metric.Int64Counter
	claimed    metric.Int64Counter
}

func NewReminderMetrics(meter metric.Meter) (*ReminderMetrics, error) {
	deliveries, err := meter.Int64Counter(
		"reminder.dispatch.deliveries",
		metric.WithDescription("Notification deliveries per channel and outcome."),
	)
	if err != nil {
		return nil, err
	}

	ticks, err := meter.Int64Counter(
		"reminder.scheduler.ticks",
		metric.WithDescription("Scheduler due-check ticks per outcome."),
	)
	if err != nil {
		return nil, err
	}

	claimed, err := meter.Int64Counter(
		"reminder.dispatch.claimed",
		metric.WithDescription("Due occurrences claimed by this process."),
	)
	if err != nil {
		return nil, err
	}

	return &ReminderMetrics{
		deliveries: deliveries,
		ticks:      ticks,
		claimed:    claimed,
	}, nil
}

func (m *ReminderMetrics) RecordDelivery(ctx context.Context, channel string, delivered bool) {
	if m == nil {
		return
	}

	outcome := OutcomeDelivered
	if !delivered {
		outcome = OutcomeFailed
	}

	m.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("outcome", outcome),
	))
}

func (m *ReminderMetrics) RecordTick(ctx context.Context, outcome string) {
	if m == nil {
		return
	}

	m.ticks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *ReminderMetrics) RecordClaimed(ctx context.Context, count int) {
	if m == nil || count == 0 {
		return
	}

	m.claimed.Add(ctx, int64(count))
}
