package domain

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// CatchUpPolicy decides where a recurring reminder goes when it fires late.
type CatchUpPolicy string

const (
	// CatchUpFixed advances exactly one period from the previous occurrence,
	// even when that occurrence is still in the past.
	CatchUpFixed CatchUpPolicy = "fixed"
	// CatchUpSkipMissed advances to the first occurrence after now, so missed
	// periods collapse into the single delivery that just happened.
	CatchUpSkipMissed CatchUpPolicy = "skip-missed"
)

func NewCatchUpPolicy(s string) (CatchUpPolicy, error) {
	switch s {
	case "", string(CatchUpFixed):
		return CatchUpFixed, nil
	case string(CatchUpSkipMissed):
		return CatchUpSkipMissed, nil
	default:
		return "", fmt.Errorf("invalid catch-up policy: %s", s)
	}
}

type RecurrenceAdvancer struct {
	policy CatchUpPolicy
}

func NewRecurrenceAdvancer(policy CatchUpPolicy) *RecurrenceAdvancer {
	if policy == "" {
		policy = CatchUpFixed
	}

	return &RecurrenceAdvancer{policy: policy}
}

func (a *RecurrenceAdvancer) Policy() CatchUpPolicy {
	return a.policy
}

// Advance moves a fired reminder to its next occurrence, or makes it terminal
// when it does not repeat. Daily and weekly steps are calendar days, so the
// wall-clock time of day is kept across DST changes.
func (a *RecurrenceAdvancer) Advance(r *Reminder, now time.Time) {
	if !r.recurrence.IsRecurring() {
		r.complete()

		return
	}

	// Under skip-missed the next occurrence must also be due strictly in the
	// future, otherwise the advance notice would make it fire on the next tick.
	r.moveTo(a.next(r.scheduledAt, r.recurrence, now.Add(r.advance.Duration())))
}

// Occurrence returns the occurrence a delivery at now stands for. It is the
// stored one except under skip-missed, where missed periods collapse into the
// latest occurrence already inside the due window.
func (a *RecurrenceAdvancer) Occurrence(r *Reminder, now time.Time) time.Time {
	if a.policy != CatchUpSkipMissed || !r.recurrence.IsRecurring() {
		return r.scheduledAt
	}

	rule, err := occurrenceRule(r.scheduledAt, r.recurrence)
	if err != nil {
		return r.scheduledAt
	}

	latest := rule.Before(now.Add(r.advance.Duration()), true)
	if latest.Before(r.scheduledAt) {
		return r.scheduledAt
	}

	return latest
}

func (a *RecurrenceAdvancer) next(scheduledAt time.Time, recurrence Recurrence, threshold time.Time) time.Time {
	fixed := scheduledAt.AddDate(0, 0, recurrence.PeriodDays())
	if a.policy != CatchUpSkipMissed || fixed.After(threshold) {
		return fixed
	}

	rule, err := occurrenceRule(scheduledAt, recurrence)
	if err != nil {
		return fixed
	}

	next := rule.After(threshold, false)
	if next.IsZero() {
		return fixed
	}

	return next
}

func occurrenceRule(scheduledAt time.Time, recurrence Recurrence) (*rrule.RRule, error) {
	freq := rrule.DAILY
	if recurrence == RecurrenceWeekly {
		freq = rrule.WEEKLY
	}

	return rrule.NewRRule(rrule.ROption{
		Freq:    freq,
		Dtstart: scheduledAt,
	})
}
