package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/logging"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/metrics"
)

const tracerName = "github.com/KasumiMercury/primind-health-remind/internal/app"

type DispatchUseCaseConfig struct {
	CatchUp          domain.CatchUpPolicy
	DeleteOnComplete bool
	Metrics          *metrics.ReminderMetrics
}

type dispatchUseCaseImpl struct {
	repo             domain.ReminderRepository
	dispatcher       domain.Dispatcher
	publisher        pubsub.Publisher
	checker          *domain.DueChecker
	advancer         *domain.RecurrenceAdvancer
	deleteOnComplete bool
	metrics          *metrics.ReminderMetrics
}

// NewDispatchUseCase builds the due-check pipeline. publisher is only used
// for reminder.deleted events and may be nil.
func NewDispatchUseCase(
	repo domain.ReminderRepository,
	dispatcher domain.Dispatcher,
	publisher pubsub.Publisher,
	cfg DispatchUseCaseConfig,
) DispatchUseCase {
	return &dispatchUseCaseImpl{
		repo:             repo,
		dispatcher:       dispatcher,
		publisher:        publisher,
		checker:          domain.NewDueChecker(),
		advancer:         domain.NewRecurrenceAdvancer(cfg.CatchUp),
		deleteOnComplete: cfg.DeleteOnComplete,
		metrics:          cfg.Metrics,
	}
}

func (uc *dispatchUseCaseImpl) ProcessDue(ctx context.Context, now time.Time) (ProcessDueOutput, error) {
	ctx = logging.WithModule(ctx, logging.ModuleDispatch)

	ctx, span := otel.Tracer(tracerName).Start(ctx, "reminder.process_due",
		trace.WithAttributes(attribute.String("reminder.now", now.Format(time.RFC3339))),
	)
	defer span.End()

	var out ProcessDueOutput

	candidates, err := uc.repo.FindUndispatched(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load due-check candidates, tick abandoned",
			slog.String("error", err.Error()),
		)
		span.RecordError(err)

		return out, storeError(err)
	}

	due := uc.checker.FindDue(candidates, now)
	out.Due = len(due)

	for _, r := range due {
		if err := ctx.Err(); err != nil {
			slog.InfoContext(ctx, "due check cancelled, remaining reminders left for the next tick",
				slog.Int("remaining", out.Due-out.Claimed-out.Skipped-out.Failed),
			)

			return out, err
		}

		// The claim, delivery and cleanup of a started reminder finish even
		// when the tick is cancelled.
		uc.processOne(context.WithoutCancel(ctx), r, now, &out)
	}

	uc.metrics.RecordClaimed(ctx, out.Claimed)

	span.SetAttributes(
		attribute.Int("reminder.due", out.Due),
		attribute.Int("reminder.claimed", out.Claimed),
	)

	if out.Due > 0 {
		slog.InfoContext(ctx, "due check finished",
			slog.Int("due", out.Due),
			slog.Int("claimed", out.Claimed),
			slog.Int("skipped", out.Skipped),
			slog.Int("delivered", out.Delivered),
			slog.Int("undelivered", out.Undelivered),
			slog.Int("failed", out.Failed),
			slog.Int("deleted", out.Deleted),
		)
	}

	return out, nil
}

// processOne claims the occurrence before delivering it: the snapshot is
// taken, the reminder is marked dispatched and advanced, and only a
// successful compare-and-swap write allows delivery.
func (uc *dispatchUseCaseImpl) processOne(ctx context.Context, r *domain.Reminder, now time.Time, out *ProcessDueOutput) {
	id := r.ID().String()
	notification := domain.NewNotification(r)
	notification.OccursAt = uc.advancer.Occurrence(r, now)
	notification.DueAt = notification.OccursAt.Add(-r.Advance().Duration())

	if err := r.MarkDispatched(); err != nil {
		slog.WarnContext(ctx, "reminder not dispatchable",
			slog.String("reminder_id", id),
			slog.String("error", err.Error()),
		)

		out.Failed++

		return
	}

	uc.advancer.Advance(r, now)

	if err := uc.repo.Update(ctx, r); err != nil {
		if errors.Is(err, domain.ErrReminderConflict) || errors.Is(err, domain.ErrReminderNotFound) {
			slog.InfoContext(ctx, "occurrence claimed elsewhere, skipped",
				slog.String("reminder_id", id),
				slog.String("reason", err.Error()),
			)

			out.Skipped++

			return
		}

		slog.ErrorContext(ctx, "failed to claim occurrence",
			slog.String("reminder_id", id),
			slog.String("error", err.Error()),
		)

		out.Failed++

		return
	}

	out.Claimed++

	result := uc.dispatcher.Deliver(ctx, notification)
	if result.Delivered() {
		out.Delivered++
	} else {
		slog.WarnContext(ctx, "no channel delivered the occurrence",
			slog.String("reminder_id", id),
			slog.Int("failures", len(result.Failures())),
		)

		out.Undelivered++
	}

	if uc.deleteOnComplete && r.IsDone() {
		if err := uc.repo.Delete(ctx, r.ID()); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
			slog.WarnContext(ctx, "failed to delete completed reminder",
				slog.String("reminder_id", id),
				slog.String("error", err.Error()),
			)

			return
		}

		out.Deleted++

		if uc.publisher != nil {
			if err := uc.publisher.PublishReminderDeleted(ctx, pubsub.ReminderDeletedEvent{
				ReminderID: id,
				DeletedAt:  now,
			}); err != nil {
				slog.WarnContext(ctx, "failed to publish reminder deleted event",
					slog.String("reminder_id", id),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	slog.DebugContext(ctx, "occurrence processed",
		slog.String("reminder_id", id),
		slog.Time("occurs_at", notification.OccursAt),
		slog.Time("next_at", r.ScheduledAt()),
		slog.Bool("done", r.IsDone()),
	)
}
