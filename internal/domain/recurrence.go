package domain

import (
	"fmt"
	"strings"
)

type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceDaily  Recurrence = "daily"
	RecurrenceWeekly Recurrence = "weekly"
)

// NewRecurrence accepts the wire value of "repeat". An empty value means the
// reminder fires once.
func NewRecurrence(s string) (Recurrence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(RecurrenceNone):
		return RecurrenceNone, nil
	case string(RecurrenceDaily):
		return RecurrenceDaily, nil
	case string(RecurrenceWeekly):
		return RecurrenceWeekly, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRecurrence, s)
	}
}

func (r Recurrence) IsRecurring() bool {
	return r == RecurrenceDaily || r == RecurrenceWeekly
}

// PeriodDays is the calendar distance between two occurrences, 0 for one-shot reminders.
func (r Recurrence) PeriodDays() int {
	switch r {
	case RecurrenceDaily:
		return 1
	case RecurrenceWeekly:
		return 7
	default:
		return 0
	}
}

func (r Recurrence) String() string {
	return string(r)
}
