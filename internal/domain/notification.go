package domain

import (
	"context"
	"errors"
	"time"
)

// Notification is the snapshot of one occurrence handed to delivery channels.
// It is taken before the reminder is advanced.
type Notification struct {
	ReminderID  ReminderID
	Category    Category
	Title       string
	Notes       string
	Recurrence  Recurrence
	OccursAt    time.Time
	DueAt       time.Time
	AdvanceMins int
}

func NewNotification(r *Reminder) Notification {
	return Notification{
		ReminderID:  r.ID(),
		Category:    r.Category(),
		Title:       r.Title(),
		Notes:       r.Notes(),
		Recurrence:  r.Recurrence(),
		OccursAt:    r.ScheduledAt(),
		DueAt:       r.DueAt(),
		AdvanceMins: r.Advance().Minutes(),
	}
}

type ChannelOutcome struct {
	Channel   string
	Delivered bool
	Err       error
}

type DeliveryResult struct {
	Outcomes []ChannelOutcome
}

// Delivered reports whether at least one channel fired.
func (d DeliveryResult) Delivered() bool {
	for _, o := range d.Outcomes {
		if o.Delivered {
			return true
		}
	}

	return false
}

func (d DeliveryResult) Failures() []ChannelOutcome {
	var failures []ChannelOutcome
	for _, o := range d.Outcomes {
		if !o.Delivered {
			failures = append(failures, o)
		}
	}

	return failures
}

// Err joins the channel errors. A non-nil value is informational only.
func (d DeliveryResult) Err() error {
	errs := make([]error, 0, len(d.Outcomes))
	for _, o := range d.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}

	return errors.Join(errs...)
}

//go:generate mockgen -source=notification.go -destination=notification_mock.go -package=domain

// Dispatcher delivers one occurrence through every configured channel. It does
// not deduplicate; callers claim the occurrence in the store before delivering.
type Dispatcher interface {
	Deliver(ctx context.Context, n Notification) DeliveryResult
}
