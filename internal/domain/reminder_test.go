package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

func mustAdvance(t *testing.T, minutes int) domain.AdvanceNotice {
	t.Helper()

	a, err := domain.NewAdvanceNotice(minutes)
	require.NoError(t, err)

	return a
}

func createReminder(t *testing.T, at time.Time, advance int, recurrence domain.Recurrence) *domain.Reminder {
	t.Helper()

	r, err := domain.NewReminder(
		domain.Category("medication"),
		"Metformin",
		at,
		mustAdvance(t, advance),
		recurrence,
		"after breakfast",
	)
	require.NoError(t, err)

	return r
}

func TestNewReminderSuccess(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		category         domain.Category
		title            string
		recurrence       domain.Recurrence
		notes            string
		expectedCategory domain.Category
		expectedTitle    string
		expectedRepeat   domain.Recurrence
	}{
		{
			name:             "daily medication",
			category:         "medication",
			title:            "Metformin",
			recurrence:       domain.RecurrenceDaily,
			expectedCategory: "medication",
			expectedTitle:    "Metformin",
			expectedRepeat:   domain.RecurrenceDaily,
		},
		{
			name:             "empty category and recurrence use defaults",
			title:            "  Dentist  ",
			expectedCategory: domain.CategoryGeneral,
			expectedTitle:    "Dentist",
			expectedRepeat:   domain.RecurrenceNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := domain.NewReminder(tt.category, tt.title, at, mustAdvance(t, 0), tt.recurrence, tt.notes)

			require.NoError(t, err)
			assert.False(t, r.ID().IsZero())
			assert.Equal(t, tt.expectedCategory, r.Category())
			assert.Equal(t, tt.expectedTitle, r.Title())
			assert.Equal(t, tt.expectedRepeat, r.Recurrence())
			assert.Equal(t, at, r.ScheduledAt())
			assert.False(t, r.IsDispatched())
			assert.False(t, r.IsDone())
			assert.Equal(t, int64(1), r.Version())
		})
	}
}

func TestNewReminderError(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		title       string
		notes       string
		expectedErr error
	}{
		{
			name:        "empty title",
			title:       "",
			expectedErr: domain.ErrEmptyTitle,
		},
		{
			name:        "whitespace title",
			title:       "   ",
			expectedErr: domain.ErrEmptyTitle,
		},
		{
			name:        "title too long",
			title:       strings.Repeat("a", 201),
			expectedErr: domain.ErrTitleTooLong,
		},
		{
			name:        "notes too long",
			title:       "Metformin",
			notes:       strings.Repeat("n", 1001),
			expectedErr: domain.ErrNotesTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := domain.NewReminder("", tt.title, at, mustAdvance(t, 0), domain.RecurrenceNone, tt.notes)

			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Nil(t, r)
		})
	}
}

func TestReminderIsDueAtSuccess(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		advance  int
		now      time.Time
		expected bool
	}{
		{
			name:     "one second before due minute",
			advance:  15,
			now:      time.Date(2024, 1, 10, 8, 44, 59, 0, time.UTC),
			expected: false,
		},
		{
			name:     "exactly at due minute with advance",
			advance:  15,
			now:      time.Date(2024, 1, 10, 8, 45, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "poll lands seconds into the due minute",
			advance:  0,
			now:      time.Date(2024, 1, 10, 9, 0, 29, 0, time.UTC),
			expected: true,
		},
		{
			name:     "missed tick is still due later",
			advance:  0,
			now:      time.Date(2024, 1, 10, 11, 30, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "one minute early",
			advance:  0,
			now:      time.Date(2024, 1, 10, 8, 59, 59, 0, time.UTC),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createReminder(t, at, tt.advance, domain.RecurrenceNone)

			assert.Equal(t, tt.expected, r.IsDueAt(tt.now))
		})
	}
}

func TestReminderIsDueAtExcludesDispatchedAndDone(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	now := at.Add(time.Minute)

	dispatched := createReminder(t, at, 0, domain.RecurrenceNone)
	require.NoError(t, dispatched.MarkDispatched())

	dismissed := createReminder(t, at, 0, domain.RecurrenceDaily)
	dismissed.Dismiss()

	assert.False(t, dispatched.IsDueAt(now))
	assert.False(t, dismissed.IsDueAt(now))
}

func TestReminderMarkDispatchedError(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		setup       func(r *domain.Reminder)
		expectedErr error
	}{
		{
			name: "already dispatched",
			setup: func(r *domain.Reminder) {
				_ = r.MarkDispatched()
			},
			expectedErr: domain.ErrAlreadyDispatched,
		},
		{
			name: "dismissed reminder",
			setup: func(r *domain.Reminder) {
				r.Dismiss()
			},
			expectedErr: domain.ErrReminderDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createReminder(t, at, 0, domain.RecurrenceDaily)
			tt.setup(r)

			assert.ErrorIs(t, r.MarkDispatched(), tt.expectedErr)
		})
	}
}

func TestReminderSnoozeSuccess(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		recurrence domain.Recurrence
		dispatched bool
	}{
		{
			name:       "undispatched daily reminder",
			recurrence: domain.RecurrenceDaily,
		},
		{
			name:       "dispatched one-shot keeps dispatched flag",
			recurrence: domain.RecurrenceNone,
			dispatched: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := createReminder(t, at, 0, tt.recurrence)
			if tt.dispatched {
				require.NoError(t, r.MarkDispatched())
			}

			err := r.Snooze(5)

			require.NoError(t, err)
			assert.Equal(t, at.Add(5*time.Minute), r.ScheduledAt())
			assert.Equal(t, tt.recurrence, r.Recurrence())
			assert.Equal(t, tt.dispatched, r.IsDispatched())
		})
	}
}

func TestReminderSnoozeError(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	for _, minutes := range []int{0, -5, 1441} {
		r := createReminder(t, at, 0, domain.RecurrenceNone)

		assert.ErrorIs(t, r.Snooze(minutes), domain.ErrInvalidSnooze)
		assert.Equal(t, at, r.ScheduledAt())
	}
}

func TestReminderRescheduleClearsOccurrenceState(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	r := createReminder(t, at, 0, domain.RecurrenceNone)
	require.NoError(t, r.MarkDispatched())
	r.Dismiss()

	next := at.Add(48 * time.Hour)
	r.Reschedule(next)

	assert.Equal(t, next, r.ScheduledAt())
	assert.False(t, r.IsDispatched())
	assert.False(t, r.IsDone())
}

func TestReminderDueAtSuccess(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	r := createReminder(t, at, 15, domain.RecurrenceNone)

	assert.Equal(t, time.Date(2024, 1, 10, 8, 45, 0, 0, time.UTC), r.DueAt())
}
