package app

import (
	"context"
)

type ReminderUseCase interface {
	CreateReminder(ctx context.Context, input CreateReminderInput) (ReminderOutput, error)
	ListReminders(ctx context.Context) (RemindersOutput, error)
	UpdateReminder(ctx context.Context, input UpdateReminderInput) (ReminderOutput, error)
	DeleteReminder(ctx context.Context, input DeleteReminderInput) error
	GetDueReminders(ctx context.Context, input GetDueRemindersInput) (RemindersOutput, error)
	MarkNotified(ctx context.Context, input MarkNotifiedInput) (ReminderOutput, error)
	SnoozeReminder(ctx context.Context, input SnoozeReminderInput) (ReminderOutput, error)
	DismissReminder(ctx context.Context, input DismissReminderInput) (DismissReminderOutput, error)
}

// TickTrigger asks the scheduler for an immediate due check.
type TickTrigger interface {
	Notify()
}
