package pubsub

import (
	"time"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

const (
	TopicReminderDue     = "reminder.due"
	TopicReminderDeleted = "reminder.deleted"

	StreamName = "REMINDER_EVENTS"
)

// ReminderDueEvent is published once per claimed occurrence.
type ReminderDueEvent struct {
	ReminderID     string    `json:"reminderId"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Notes          string    `json:"notes,omitempty"`
	Repeat         string    `json:"repeat"`
	AdvanceMinutes int       `json:"advanceMinutes"`
	OccursAt       time.Time `json:"occursAt"`
	DueAt          time.Time `json:"dueAt"`
}

func NewReminderDueEvent(n domain.Notification) ReminderDueEvent {
	return ReminderDueEvent{
		ReminderID:     n.ReminderID.String(),
		Type:           n.Category.String(),
		Title:          n.Title,
		Notes:          n.Notes,
		Repeat:         n.Recurrence.String(),
		AdvanceMinutes: n.AdvanceMins,
		OccursAt:       n.OccursAt,
		DueAt:          n.DueAt,
	}
}

type ReminderDeletedEvent struct {
	ReminderID string    `json:"reminderId"`
	DeletedAt  time.Time `json:"deletedAt"`
}
