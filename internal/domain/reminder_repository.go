package domain

import (
	"context"
)

type ReminderRepository interface {
	Save(ctx context.Context, reminder *Reminder) error
	FindByID(ctx context.Context, id ReminderID) (*Reminder, error)
	FindAll(ctx context.Context) ([]*Reminder, error)
	// FindUndispatched returns reminders that are neither done nor dispatched,
	// the candidate set of a due check.
	FindUndispatched(ctx context.Context) ([]*Reminder, error)
	// Update writes the reminder if its stored version still equals
	// reminder.Version(), returning ErrReminderConflict otherwise.
	Update(ctx context.Context, reminder *Reminder) error
	Delete(ctx context.Context, id ReminderID) error
	WithTx(ctx context.Context, fn func(repo ReminderRepository) error) error
}
