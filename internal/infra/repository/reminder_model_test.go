package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/repository"
)

func createValidReminder(t *testing.T, at time.Time, recurrence domain.Recurrence) *domain.Reminder {
	t.Helper()

	advance, err := domain.NewAdvanceNotice(15)
	require.NoError(t, err)

	r, err := domain.NewReminder("medication", "Metformin", at, advance, recurrence, "after breakfast")
	require.NoError(t, err)

	return r
}

func TestFromEntitySuccess(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	r := createValidReminder(t, at, domain.RecurrenceDaily)
	require.NoError(t, r.MarkDispatched())

	model := repository.FromEntity(r)

	assert.Equal(t, r.ID().String(), model.ID)
	assert.Equal(t, "medication", model.Category)
	assert.Equal(t, "Metformin", model.Title)
	assert.Equal(t, at, model.ScheduledAt)
	assert.Equal(t, 15, model.AdvanceMinutes)
	assert.Equal(t, "daily", model.Recurrence)
	assert.Equal(t, "after breakfast", model.Notes)
	assert.True(t, model.Dispatched)
	assert.False(t, model.Done)
	assert.Equal(t, int64(1), model.Version)
}

func TestToEntitySuccess(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	r := createValidReminder(t, time.Date(2024, 1, 10, 9, 0, 0, 0, tokyo), domain.RecurrenceWeekly)

	model := repository.FromEntity(r)
	model.ScheduledAt = model.ScheduledAt.UTC()

	entity, err := model.ToEntity(tokyo)

	require.NoError(t, err)
	assert.Equal(t, r.ID(), entity.ID())
	assert.Equal(t, 9, entity.ScheduledAt().Hour())
	assert.Equal(t, tokyo, entity.ScheduledAt().Location())
	assert.Equal(t, domain.RecurrenceWeekly, entity.Recurrence())
	assert.Equal(t, 15, entity.Advance().Minutes())
}

func TestToEntityError(t *testing.T) {
	r := createValidReminder(t, time.Now(), domain.RecurrenceNone)

	tests := []struct {
		name   string
		mutate func(m *repository.ReminderModel)
	}{
		{
			name:   "invalid id",
			mutate: func(m *repository.ReminderModel) { m.ID = "not-a-uuid" },
		},
		{
			name:   "unknown recurrence",
			mutate: func(m *repository.ReminderModel) { m.Recurrence = "monthly" },
		},
		{
			name:   "negative advance",
			mutate: func(m *repository.ReminderModel) { m.AdvanceMinutes = -5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := repository.FromEntity(r)
			tt.mutate(model)

			_, err := model.ToEntity(time.UTC)

			assert.Error(t, err)
		})
	}
}
