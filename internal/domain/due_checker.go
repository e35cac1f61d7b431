package domain

import (
	"sort"
	"time"
)

type DueChecker struct{}

func NewDueChecker() *DueChecker {
	return &DueChecker{}
}

// FindDue returns every reminder whose effective due minute is at or before the
// minute of now and whose current occurrence has not been dispatched.
//
// The result is a pure function of its inputs: calling it twice without an
// intervening dispatch returns the same set. Results are ordered by due instant
// so that the oldest occurrence is delivered first.
func (c *DueChecker) FindDue(reminders []*Reminder, now time.Time) []*Reminder {
	due := make([]*Reminder, 0, len(reminders))
	for _, r := range reminders {
		if r == nil {
			continue
		}

		if r.IsDueAt(now) {
			due = append(due, r)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueAt().Before(due[j].DueAt())
	})

	return due
}
