package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
)

const maxMutationAttempts = 3

type ReminderUseCaseConfig struct {
	// Location interprets the wall-clock date and time of a reminder.
	Location *time.Location
	CatchUp  domain.CatchUpPolicy
	// DeleteOnComplete removes finished one-shot and dismissed reminders
	// instead of keeping them flagged done.
	DeleteOnComplete bool
	Now              func() time.Time
}

type reminderUseCaseImpl struct {
	repo             domain.ReminderRepository
	publisher        pubsub.Publisher
	trigger          TickTrigger
	checker          *domain.DueChecker
	advancer         *domain.RecurrenceAdvancer
	loc              *time.Location
	deleteOnComplete bool
	now              func() time.Time
}

// NewReminderUseCase wires the user-facing operations. publisher and trigger
// may be nil.
func NewReminderUseCase(
	repo domain.ReminderRepository,
	publisher pubsub.Publisher,
	trigger TickTrigger,
	cfg ReminderUseCaseConfig,
) ReminderUseCase {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &reminderUseCaseImpl{
		repo:             repo,
		publisher:        publisher,
		trigger:          trigger,
		checker:          domain.NewDueChecker(),
		advancer:         domain.NewRecurrenceAdvancer(cfg.CatchUp),
		loc:              loc,
		deleteOnComplete: cfg.DeleteOnComplete,
		now:              now,
	}
}

func (uc *reminderUseCaseImpl) CreateReminder(ctx context.Context, input CreateReminderInput) (ReminderOutput, error) {
	slog.Debug("creating reminder",
		"type", input.Type,
		"date", input.Date,
		"time", input.Time,
		"repeat", input.Repeat,
	)

	category, err := domain.NewCategory(input.Type)
	if err != nil {
		return ReminderOutput{}, validationFrom(err)
	}

	scheduledAt, err := domain.ParseSchedule(input.Date, input.Time, uc.loc)
	if err != nil {
		return ReminderOutput{}, validationFrom(err)
	}

	advance, err := domain.NewAdvanceNotice(input.AdvanceMinutes)
	if err != nil {
		return ReminderOutput{}, validationFrom(err)
	}

	recurrence, err := domain.NewRecurrence(input.Repeat)
	if err != nil {
		return ReminderOutput{}, validationFrom(err)
	}

	reminder, err := domain.NewReminder(category, input.Title, scheduledAt, advance, recurrence, input.Notes)
	if err != nil {
		return ReminderOutput{}, validationFrom(err)
	}

	if err := uc.repo.Save(ctx, reminder); err != nil {
		slog.Error("failed to save reminder",
			"error", err,
			"reminder_id", reminder.ID().String(),
		)

		return ReminderOutput{}, storeError(err)
	}

	slog.Info("reminder created",
		"reminder_id", reminder.ID().String(),
		"scheduled_at", reminder.ScheduledAt(),
		"repeat", reminder.Recurrence().String(),
	)

	uc.triggerIfDue(reminder)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) ListReminders(ctx context.Context) (RemindersOutput, error) {
	reminders, err := uc.repo.FindAll(ctx)
	if err != nil {
		slog.Error("failed to list reminders",
			"error", err,
		)

		return RemindersOutput{}, storeError(err)
	}

	slog.Debug("reminders listed",
		"count", len(reminders),
	)

	return FromEntities(reminders), nil
}

func (uc *reminderUseCaseImpl) UpdateReminder(ctx context.Context, input UpdateReminderInput) (ReminderOutput, error) {
	slog.Debug("updating reminder",
		"reminder_id", input.ID,
	)

	id, err := parseReminderID(input.ID)
	if err != nil {
		return ReminderOutput{}, err
	}

	var (
		category   domain.Category
		advance    domain.AdvanceNotice
		recurrence domain.Recurrence
	)

	if input.Type != nil {
		if category, err = domain.NewCategory(*input.Type); err != nil {
			return ReminderOutput{}, validationFrom(err)
		}
	}

	if input.AdvanceMinutes != nil {
		if advance, err = domain.NewAdvanceNotice(*input.AdvanceMinutes); err != nil {
			return ReminderOutput{}, validationFrom(err)
		}
	}

	if input.Repeat != nil {
		if recurrence, err = domain.NewRecurrence(*input.Repeat); err != nil {
			return ReminderOutput{}, validationFrom(err)
		}
	}

	reminder, err := uc.mutate(ctx, id, func(r *domain.Reminder) (bool, error) {
		if input.Title != nil {
			if err := r.Rename(*input.Title); err != nil {
				return false, validationFrom(err)
			}
		}

		if input.Notes != nil {
			if err := r.ChangeNotes(*input.Notes); err != nil {
				return false, validationFrom(err)
			}
		}

		if input.Date != nil || input.Time != nil {
			current := r.ScheduledAt().In(uc.loc)

			date := current.Format(domain.DateLayout)
			if input.Date != nil {
				date = *input.Date
			}

			clock := current.Format(domain.ClockLayout)
			if input.Time != nil {
				clock = *input.Time
			}

			scheduledAt, err := domain.ParseSchedule(date, clock, uc.loc)
			if err != nil {
				return false, validationFrom(err)
			}

			r.Reschedule(scheduledAt)
		}

		if input.Type != nil {
			r.ChangeCategory(category)
		}

		if input.AdvanceMinutes != nil {
			r.ChangeAdvance(advance)
		}

		if input.Repeat != nil {
			r.ChangeRecurrence(recurrence)
		}

		return true, nil
	})
	if err != nil {
		return ReminderOutput{}, err
	}

	slog.Info("reminder updated",
		"reminder_id", input.ID,
		"scheduled_at", reminder.ScheduledAt(),
	)

	uc.triggerIfDue(reminder)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) DeleteReminder(ctx context.Context, input DeleteReminderInput) error {
	slog.Debug("deleting reminder",
		"reminder_id", input.ID,
	)

	id, err := domain.ReminderIDFromString(input.ID)
	if err != nil {
		slog.Info("delete of malformed reminder id ignored",
			"reminder_id", input.ID,
		)

		return nil
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrReminderNotFound) {
			slog.Info("reminder already absent (idempotency)",
				"reminder_id", input.ID,
			)

			return nil
		}

		slog.Error("failed to delete reminder",
			"error", err,
			"reminder_id", input.ID,
		)

		return storeError(err)
	}

	uc.publishDeleted(ctx, id)

	slog.Info("reminder deleted",
		"reminder_id", input.ID,
	)

	return nil
}

func (uc *reminderUseCaseImpl) GetDueReminders(ctx context.Context, input GetDueRemindersInput) (RemindersOutput, error) {
	now := input.Now
	if now.IsZero() {
		now = uc.now()
	}

	candidates, err := uc.repo.FindUndispatched(ctx)
	if err != nil {
		slog.Error("failed to load due-check candidates",
			"error", err,
		)

		return RemindersOutput{}, storeError(err)
	}

	due := uc.checker.FindDue(candidates, now)

	slog.Debug("due reminders computed",
		"candidates", len(candidates),
		"due", len(due),
		"now", now,
	)

	return FromEntities(due), nil
}

func (uc *reminderUseCaseImpl) MarkNotified(ctx context.Context, input MarkNotifiedInput) (ReminderOutput, error) {
	slog.Debug("marking reminder notified",
		"reminder_id", input.ID,
	)

	id, err := parseReminderID(input.ID)
	if err != nil {
		return ReminderOutput{}, err
	}

	now := uc.now()

	reminder, err := uc.mutate(ctx, id, func(r *domain.Reminder) (bool, error) {
		if err := r.MarkDispatched(); err != nil {
			if errors.Is(err, domain.ErrAlreadyDispatched) || errors.Is(err, domain.ErrReminderDone) {
				slog.Info("reminder occurrence already recorded (idempotency)",
					"reminder_id", input.ID,
				)

				return false, nil
			}

			return false, fmtInternal(err)
		}

		uc.advancer.Advance(r, now)

		return true, nil
	})
	if err != nil {
		return ReminderOutput{}, err
	}

	if uc.deleteOnComplete && reminder.IsDone() {
		uc.deleteCompleted(ctx, reminder.ID())
	}

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) SnoozeReminder(ctx context.Context, input SnoozeReminderInput) (ReminderOutput, error) {
	slog.Debug("snoozing reminder",
		"reminder_id", input.ID,
		"minutes", input.Minutes,
	)

	if input.Minutes < 1 || input.Minutes > domain.MaxSnoozeMinutes {
		return ReminderOutput{}, NewValidationError("minutes", domain.ErrInvalidSnooze.Error())
	}

	id, err := parseReminderID(input.ID)
	if err != nil {
		return ReminderOutput{}, err
	}

	reminder, err := uc.mutate(ctx, id, func(r *domain.Reminder) (bool, error) {
		if err := r.Snooze(input.Minutes); err != nil {
			return false, validationFrom(err)
		}

		return true, nil
	})
	if err != nil {
		return ReminderOutput{}, err
	}

	slog.Info("reminder snoozed",
		"reminder_id", input.ID,
		"minutes", input.Minutes,
		"scheduled_at", reminder.ScheduledAt(),
	)

	return FromEntity(reminder), nil
}

func (uc *reminderUseCaseImpl) DismissReminder(ctx context.Context, input DismissReminderInput) (DismissReminderOutput, error) {
	slog.Debug("dismissing reminder",
		"reminder_id", input.ID,
	)

	id, err := parseReminderID(input.ID)
	if err != nil {
		return DismissReminderOutput{}, err
	}

	if uc.deleteOnComplete {
		var reminder *domain.Reminder

		err := uc.repo.WithTx(ctx, func(tx domain.ReminderRepository) error {
			found, err := tx.FindByID(ctx, id)
			if err != nil {
				return err
			}

			if err := tx.Delete(ctx, id); err != nil {
				return err
			}

			reminder = found

			return nil
		})
		if err != nil {
			return DismissReminderOutput{}, storeError(err)
		}

		uc.publishDeleted(ctx, id)

		reminder.Dismiss()

		return DismissReminderOutput{Reminder: FromEntity(reminder), Deleted: true}, nil
	}

	reminder, err := uc.mutate(ctx, id, func(r *domain.Reminder) (bool, error) {
		if r.IsDone() {
			return false, nil
		}

		r.Dismiss()

		return true, nil
	})
	if err != nil {
		return DismissReminderOutput{}, err
	}

	slog.Info("reminder dismissed",
		"reminder_id", input.ID,
	)

	return DismissReminderOutput{Reminder: FromEntity(reminder)}, nil
}

// mutate is a read-modify-write with a compare-and-swap on the version. fn
// reports whether it changed anything; unchanged reminders are not written.
// A lost race is retried against the fresh row a bounded number of times.
func (uc *reminderUseCaseImpl) mutate(
	ctx context.Context,
	id domain.ReminderID,
	fn func(r *domain.Reminder) (bool, error),
) (*domain.Reminder, error) {
	for attempt := 1; ; attempt++ {
		reminder, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			if !errors.Is(err, domain.ErrReminderNotFound) {
				slog.Error("failed to load reminder",
					"error", err,
					"reminder_id", id.String(),
				)
			}

			return nil, storeError(err)
		}

		changed, err := fn(reminder)
		if err != nil {
			return nil, err
		}

		if !changed {
			return reminder, nil
		}

		err = uc.repo.Update(ctx, reminder)
		if err == nil {
			return reminder, nil
		}

		if errors.Is(err, domain.ErrReminderConflict) && attempt < maxMutationAttempts {
			slog.Debug("reminder changed underneath, retrying",
				"reminder_id", id.String(),
				"attempt", attempt,
			)

			continue
		}

		return nil, storeError(err)
	}
}

func (uc *reminderUseCaseImpl) deleteCompleted(ctx context.Context, id domain.ReminderID) {
	if err := uc.repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrReminderNotFound) {
		slog.Warn("failed to delete completed reminder",
			"error", err,
			"reminder_id", id.String(),
		)

		return
	}

	uc.publishDeleted(ctx, id)
}

func (uc *reminderUseCaseImpl) publishDeleted(ctx context.Context, id domain.ReminderID) {
	if uc.publisher == nil {
		return
	}

	if err := uc.publisher.PublishReminderDeleted(ctx, pubsub.ReminderDeletedEvent{
		ReminderID: id.String(),
		DeletedAt:  uc.now(),
	}); err != nil {
		slog.Warn("failed to publish reminder deleted event",
			"error", err,
			"reminder_id", id.String(),
		)
	}
}

func (uc *reminderUseCaseImpl) triggerIfDue(r *domain.Reminder) {
	if uc.trigger != nil && r.IsDueAt(uc.now()) {
		uc.trigger.Notify()
	}
}

// parseReminderID treats a malformed id like any other unknown id.
func parseReminderID(s string) (domain.ReminderID, error) {
	id, err := domain.ReminderIDFromString(s)
	if err != nil {
		return domain.ReminderID{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return id, nil
}
