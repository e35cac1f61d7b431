package app_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-health-remind/internal/app"
	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/repository"
	"github.com/KasumiMercury/primind-health-remind/internal/testutil"
)

var fixedNow = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

type countingTrigger struct {
	calls atomic.Int32
}

func (c *countingTrigger) Notify() {
	c.calls.Add(1)
}

type useCaseFixture struct {
	useCase app.ReminderUseCase
	repo    domain.ReminderRepository
	trigger *countingTrigger
}

func setupUseCaseTest(t *testing.T, publisher pubsub.Publisher, deleteOnComplete bool) useCaseFixture {
	t.Helper()

	testDB := testutil.SetupSQLiteDB(t)
	repo := repository.NewReminderRepository(testDB.DB, time.UTC)
	trigger := &countingTrigger{}

	useCase := app.NewReminderUseCase(repo, publisher, trigger, app.ReminderUseCaseConfig{
		Location:         time.UTC,
		CatchUp:          domain.CatchUpFixed,
		DeleteOnComplete: deleteOnComplete,
		Now:              func() time.Time { return fixedNow },
	})

	return useCaseFixture{useCase: useCase, repo: repo, trigger: trigger}
}

func validCreateInput() app.CreateReminderInput {
	return app.CreateReminderInput{
		Type:           "medication",
		Title:          "Metformin",
		Date:           "2024-01-10",
		Time:           "09:00",
		Repeat:         "daily",
		AdvanceMinutes: 0,
		Notes:          "after breakfast",
	}
}

func createReminder(t *testing.T, f useCaseFixture, mutate func(in *app.CreateReminderInput)) app.ReminderOutput {
	t.Helper()

	input := validCreateInput()
	if mutate != nil {
		mutate(&input)
	}

	out, err := f.useCase.CreateReminder(context.Background(), input)
	require.NoError(t, err)

	return out
}

func ptr[T any](v T) *T {
	return &v
}

func TestCreateReminderSuccess(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(in *app.CreateReminderInput)
		expectedType   string
		expectedRepeat string
		expectedDueAt  time.Time
	}{
		{
			name:           "daily medication",
			expectedType:   "medication",
			expectedRepeat: "daily",
			expectedDueAt:  time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "empty type and repeat use defaults",
			mutate: func(in *app.CreateReminderInput) {
				in.Type = ""
				in.Repeat = ""
			},
			expectedType:   "general",
			expectedRepeat: "none",
			expectedDueAt:  time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			name: "advance notice",
			mutate: func(in *app.CreateReminderInput) {
				in.Repeat = "weekly"
				in.AdvanceMinutes = 15
			},
			expectedType:   "medication",
			expectedRepeat: "weekly",
			expectedDueAt:  time.Date(2024, 1, 10, 8, 45, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupUseCaseTest(t, nil, false)

			out := createReminder(t, f, tt.mutate)

			assert.NotEmpty(t, out.ID)
			assert.Equal(t, tt.expectedType, out.Type)
			assert.Equal(t, "Metformin", out.Title)
			assert.Equal(t, "2024-01-10", out.Date)
			assert.Equal(t, "09:00", out.Time)
			assert.Equal(t, tt.expectedRepeat, out.Repeat)
			assert.True(t, tt.expectedDueAt.Equal(out.DueAt))
			assert.False(t, out.Dispatched)
			assert.False(t, out.Done)

			list, err := f.useCase.ListReminders(context.Background())
			require.NoError(t, err)
			assert.Equal(t, int32(1), list.Count)
			assert.Zero(t, f.trigger.calls.Load())
		})
	}
}

func TestCreateReminderTriggersImmediateTick(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)

	createReminder(t, f, func(in *app.CreateReminderInput) {
		in.Time = "07:30"
	})

	assert.Equal(t, int32(1), f.trigger.calls.Load())
}

func TestCreateReminderError(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(in *app.CreateReminderInput)
		expectedField string
	}{
		{name: "empty title", mutate: func(in *app.CreateReminderInput) { in.Title = "  " }, expectedField: "title"},
		{name: "malformed date", mutate: func(in *app.CreateReminderInput) { in.Date = "10/01/2024" }, expectedField: "date"},
		{name: "missing time", mutate: func(in *app.CreateReminderInput) { in.Time = "" }, expectedField: "time"},
		{name: "negative advance", mutate: func(in *app.CreateReminderInput) { in.AdvanceMinutes = -1 }, expectedField: "advanceMinutes"},
		{name: "unknown repeat", mutate: func(in *app.CreateReminderInput) { in.Repeat = "hourly" }, expectedField: "repeat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupUseCaseTest(t, nil, false)

			input := validCreateInput()
			tt.mutate(&input)

			_, err := f.useCase.CreateReminder(context.Background(), input)

			var validationErr *app.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.expectedField, validationErr.Field)

			list, err := f.useCase.ListReminders(context.Background())
			require.NoError(t, err)
			assert.Zero(t, list.Count)
		})
	}
}

func TestUpdateReminderSuccess(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)
	ctx := context.Background()

	created := createReminder(t, f, func(in *app.CreateReminderInput) { in.Repeat = "none" })

	_, err := f.useCase.MarkNotified(ctx, app.MarkNotifiedInput{ID: created.ID})
	require.NoError(t, err)

	updated, err := f.useCase.UpdateReminder(ctx, app.UpdateReminderInput{
		ID:             created.ID,
		Title:          ptr("Metformin 500mg"),
		Time:           ptr("20:00"),
		AdvanceMinutes: ptr(10),
	})

	require.NoError(t, err)
	assert.Equal(t, "Metformin 500mg", updated.Title)
	assert.Equal(t, "2024-01-10", updated.Date)
	assert.Equal(t, "20:00", updated.Time)
	assert.Equal(t, 10, updated.AdvanceMinutes)
	assert.Equal(t, "none", updated.Repeat)
	assert.False(t, updated.Dispatched)
	assert.False(t, updated.Done)
}

func TestUpdateReminderError(t *testing.T) {
	tests := []struct {
		name        string
		input       func(id string) app.UpdateReminderInput
		expectedErr error
	}{
		{
			name: "unknown id",
			input: func(_ string) app.UpdateReminderInput {
				return app.UpdateReminderInput{ID: domain.NewReminderID().String()}
			},
			expectedErr: app.ErrNotFound,
		},
		{
			name:        "malformed id",
			input:       func(_ string) app.UpdateReminderInput { return app.UpdateReminderInput{ID: "42"} },
			expectedErr: app.ErrNotFound,
		},
		{
			name:        "empty title",
			input:       func(id string) app.UpdateReminderInput { return app.UpdateReminderInput{ID: id, Title: ptr("")} },
			expectedErr: app.ErrValidation,
		},
		{
			name: "bad date",
			input: func(id string) app.UpdateReminderInput {
				return app.UpdateReminderInput{ID: id, Date: ptr("2024-13-01")}
			},
			expectedErr: app.ErrValidation,
		},
		{
			name:        "bad repeat",
			input:       func(id string) app.UpdateReminderInput { return app.UpdateReminderInput{ID: id, Repeat: ptr("yearly")} },
			expectedErr: app.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupUseCaseTest(t, nil, false)
			created := createReminder(t, f, nil)

			_, err := f.useCase.UpdateReminder(context.Background(), tt.input(created.ID))

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestDeleteReminderSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)
	f := setupUseCaseTest(t, publisher, false)
	ctx := context.Background()

	created := createReminder(t, f, nil)

	publisher.EXPECT().
		PublishReminderDeleted(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, event pubsub.ReminderDeletedEvent) error {
			assert.Equal(t, created.ID, event.ReminderID)

			return nil
		})

	require.NoError(t, f.useCase.DeleteReminder(ctx, app.DeleteReminderInput{ID: created.ID}))

	list, err := f.useCase.ListReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestDeleteReminderIdempotentSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)
	f := setupUseCaseTest(t, publisher, false)
	ctx := context.Background()

	kept := createReminder(t, f, nil)

	for _, id := range []string{domain.NewReminderID().String(), "not-an-id", ""} {
		assert.NoError(t, f.useCase.DeleteReminder(ctx, app.DeleteReminderInput{ID: id}))
	}

	list, err := f.useCase.ListReminders(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(1), list.Count)
	assert.Equal(t, kept.ID, list.Reminders[0].ID)
}

func TestGetDueRemindersSuccess(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)
	ctx := context.Background()

	due := createReminder(t, f, func(in *app.CreateReminderInput) { in.AdvanceMinutes = 15 })
	createReminder(t, f, func(in *app.CreateReminderInput) { in.Time = "12:00" })

	tests := []struct {
		name     string
		now      time.Time
		expected []string
	}{
		{name: "before the advance window", now: time.Date(2024, 1, 10, 8, 44, 59, 0, time.UTC), expected: []string{}},
		{name: "inside the advance window", now: time.Date(2024, 1, 10, 8, 45, 0, 0, time.UTC), expected: []string{due.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := f.useCase.GetDueReminders(ctx, app.GetDueRemindersInput{Now: tt.now})
			require.NoError(t, err)

			second, err := f.useCase.GetDueReminders(ctx, app.GetDueRemindersInput{Now: tt.now})
			require.NoError(t, err)

			ids := make([]string, 0, len(first.Reminders))
			for _, r := range first.Reminders {
				ids = append(ids, r.ID)
			}

			assert.Equal(t, tt.expected, ids)
			assert.Equal(t, first, second)
		})
	}
}

func TestMarkNotifiedSuccess(t *testing.T) {
	tests := []struct {
		name             string
		repeat           string
		expectedDate     string
		expectDone       bool
		expectDispatched bool
	}{
		{name: "daily advances", repeat: "daily", expectedDate: "2024-01-11"},
		{name: "weekly advances", repeat: "weekly", expectedDate: "2024-01-17"},
		{name: "one-shot completes", repeat: "none", expectedDate: "2024-01-10", expectDone: true, expectDispatched: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupUseCaseTest(t, nil, false)
			ctx := context.Background()

			created := createReminder(t, f, func(in *app.CreateReminderInput) { in.Repeat = tt.repeat })

			out, err := f.useCase.MarkNotified(ctx, app.MarkNotifiedInput{ID: created.ID})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedDate, out.Date)
			assert.Equal(t, "09:00", out.Time)
			assert.Equal(t, tt.expectDone, out.Done)
			assert.Equal(t, tt.expectDispatched, out.Dispatched)
		})
	}
}

func TestMarkNotifiedIdempotentSuccess(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)
	ctx := context.Background()

	created := createReminder(t, f, func(in *app.CreateReminderInput) { in.Repeat = "none" })

	first, err := f.useCase.MarkNotified(ctx, app.MarkNotifiedInput{ID: created.ID})
	require.NoError(t, err)

	second, err := f.useCase.MarkNotified(ctx, app.MarkNotifiedInput{ID: created.ID})
	require.NoError(t, err)

	assert.True(t, first.ScheduledAt.Equal(second.ScheduledAt))
	assert.True(t, second.Done)
}

func TestMarkNotifiedError(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)

	_, err := f.useCase.MarkNotified(context.Background(), app.MarkNotifiedInput{ID: domain.NewReminderID().String()})

	assert.ErrorIs(t, err, app.ErrNotFound)
}

func TestMarkNotifiedDeleteOnCompleteSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	publisher := pubsub.NewMockPublisher(ctrl)
	f := setupUseCaseTest(t, publisher, true)
	ctx := context.Background()

	created := createReminder(t, f, func(in *app.CreateReminderInput) { in.Repeat = "none" })

	publisher.EXPECT().PublishReminderDeleted(gomock.Any(), gomock.Any()).Return(nil)

	out, err := f.useCase.MarkNotified(ctx, app.MarkNotifiedInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, out.Done)

	list, err := f.useCase.ListReminders(ctx)
	require.NoError(t, err)
	assert.Zero(t, list.Count)
}

func TestSnoozeReminderSuccess(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)
	ctx := context.Background()

	created := createReminder(t, f, nil)

	out, err := f.useCase.SnoozeReminder(ctx, app.SnoozeReminderInput{ID: created.ID, Minutes: 5})

	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, out.ScheduledAt.Sub(created.ScheduledAt))
	assert.Equal(t, "09:05", out.Time)
	assert.Equal(t, created.Repeat, out.Repeat)
	assert.Equal(t, created.Dispatched, out.Dispatched)
	assert.Equal(t, created.Done, out.Done)
}

func TestSnoozeReminderError(t *testing.T) {
	tests := []struct {
		name        string
		id          func(created string) string
		minutes     int
		expectedErr error
	}{
		{name: "zero minutes", id: func(c string) string { return c }, minutes: 0, expectedErr: app.ErrValidation},
		{name: "more than a day", id: func(c string) string { return c }, minutes: 1441, expectedErr: app.ErrValidation},
		{name: "unknown id", id: func(string) string { return domain.NewReminderID().String() }, minutes: 5, expectedErr: app.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupUseCaseTest(t, nil, false)
			created := createReminder(t, f, nil)

			_, err := f.useCase.SnoozeReminder(context.Background(), app.SnoozeReminderInput{
				ID:      tt.id(created.ID),
				Minutes: tt.minutes,
			})

			assert.ErrorIs(t, err, tt.expectedErr)

			list, err := f.useCase.ListReminders(context.Background())
			require.NoError(t, err)
			assert.Equal(t, created.ScheduledAt.Unix(), list.Reminders[0].ScheduledAt.Unix())
		})
	}
}

func TestDismissReminderSuccess(t *testing.T) {
	f := setupUseCaseTest(t, nil, false)
	ctx := context.Background()

	created := createReminder(t, f, nil)

	out, err := f.useCase.DismissReminder(ctx, app.DismissReminderInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, out.Reminder.Done)
	assert.False(t, out.Deleted)

	again, err := f.useCase.DismissReminder(ctx, app.DismissReminderInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, again.Reminder.Done)

	due, err := f.useCase.GetDueReminders(ctx, app.GetDueRemindersInput{Now: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Zero(t, due.Count)
}

func TestDismissReminderDeleteOnCompleteSuccess(t *testing.T) {
	f := setupUseCaseTest(t, nil, true)
	ctx := context.Background()

	created := createReminder(t, f, nil)

	out, err := f.useCase.DismissReminder(ctx, app.DismissReminderInput{ID: created.ID})
	require.NoError(t, err)
	assert.True(t, out.Deleted)
	assert.Equal(t, created.ID, out.Reminder.ID)

	_, err = f.useCase.DismissReminder(ctx, app.DismissReminderInput{ID: created.ID})
	assert.ErrorIs(t, err, app.ErrNotFound)
}
