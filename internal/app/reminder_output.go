package app

import (
	"time"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

type ReminderOutput struct {
	ID             string
	Type           string
	Title          string
	Date           string
	Time           string
	ScheduledAt    time.Time
	Repeat         string
	AdvanceMinutes int
	Notes          string
	Dispatched     bool
	Done           bool
	DueAt          time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type RemindersOutput struct {
	Reminders []ReminderOutput
	Count     int32
}

type DismissReminderOutput struct {
	Reminder ReminderOutput
	// Deleted is true when completed reminders are removed instead of kept as done.
	Deleted bool
}

func FromEntity(r *domain.Reminder) ReminderOutput {
	return ReminderOutput{
		ID:             r.ID().String(),
		Type:           r.Category().String(),
		Title:          r.Title(),
		Date:           r.ScheduledAt().Format(domain.DateLayout),
		Time:           r.ScheduledAt().Format(domain.ClockLayout),
		ScheduledAt:    r.ScheduledAt(),
		Repeat:         r.Recurrence().String(),
		AdvanceMinutes: r.Advance().Minutes(),
		Notes:          r.Notes(),
		Dispatched:     r.IsDispatched(),
		Done:           r.IsDone(),
		DueAt:          r.DueAt(),
		CreatedAt:      r.CreatedAt(),
		UpdatedAt:      r.UpdatedAt(),
	}
}

func FromEntities(reminders []*domain.Reminder) RemindersOutput {
	outputs := make([]ReminderOutput, 0, len(reminders))
	for _, r := range reminders {
		outputs = append(outputs, FromEntity(r))
	}

	return RemindersOutput{
		Reminders: outputs,
		Count:     int32(len(outputs)), //nolint:gosec
	}
}
