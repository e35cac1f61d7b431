package domain

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	MaxAdvanceMinutes = 7 * 24 * 60
	MaxSnoozeMinutes  = 24 * 60
)

// ParseSchedule combines a calendar date and a wall-clock time of day into the
// nominal occurrence instant in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}

	c, err := time.Parse(ClockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, ErrInvalidClock
	}

	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}

// AdvanceNotice is how long before the scheduled instant a reminder becomes due.
type AdvanceNotice struct {
	minutes int
}

func NewAdvanceNotice(minutes int) (AdvanceNotice, error) {
	if minutes < 0 || minutes > MaxAdvanceMinutes {
		return AdvanceNotice{}, ErrInvalidAdvance
	}

	return AdvanceNotice{minutes: minutes}, nil
}

func (a AdvanceNotice) Minutes() int {
	return a.minutes
}

func (a AdvanceNotice) Duration() time.Duration {
	return time.Duration(a.minutes) * time.Minute
}

// truncateMinute drops seconds and below. Due checks compare at minute granularity
// so a poll that lands a few seconds into the due minute still matches it.
func truncateMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute)
}
