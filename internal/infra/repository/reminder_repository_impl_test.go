package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
	"github.com/KasumiMercury/primind-health-remind/internal/infra/repository"
	"github.com/KasumiMercury/primind-health-remind/internal/testutil"
)

func setupRepository(t *testing.T) domain.ReminderRepository {
	t.Helper()

	testDB := testutil.SetupSQLiteDB(t)

	return repository.NewReminderRepository(testDB.DB, time.UTC)
}

func TestSaveSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), domain.RecurrenceDaily)

	err := repo.Save(ctx, r)
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, r.ID())

	require.NoError(t, err)
	assert.Equal(t, r.ID(), found.ID())
	assert.Equal(t, r.Title(), found.Title())
	assert.True(t, r.ScheduledAt().Equal(found.ScheduledAt()))
	assert.Equal(t, domain.RecurrenceDaily, found.Recurrence())
	assert.False(t, found.IsDispatched())
	assert.False(t, found.IsDone())
	assert.Equal(t, int64(1), found.Version())
}

func TestSaveError(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Now(), domain.RecurrenceNone)
	require.NoError(t, repo.Save(ctx, r))

	err := repo.Save(ctx, r)

	assert.Error(t, err)
}

func TestFindByIDError(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.FindByID(context.Background(), domain.NewReminderID())

	assert.ErrorIs(t, err, domain.ErrReminderNotFound)
}

func TestFindAllSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	later := createValidReminder(t, base.Add(2*time.Hour), domain.RecurrenceNone)
	earlier := createValidReminder(t, base, domain.RecurrenceWeekly)
	require.NoError(t, repo.Save(ctx, later))
	require.NoError(t, repo.Save(ctx, earlier))

	found, err := repo.FindAll(ctx)

	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, earlier.ID(), found[0].ID())
	assert.Equal(t, later.ID(), found[1].ID())
}

func TestFindUndispatchedSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	pending := createValidReminder(t, base, domain.RecurrenceDaily)
	dispatched := createValidReminder(t, base, domain.RecurrenceNone)
	require.NoError(t, dispatched.MarkDispatched())
	dismissed := createValidReminder(t, base, domain.RecurrenceNone)
	dismissed.Dismiss()

	for _, r := range []*domain.Reminder{pending, dispatched, dismissed} {
		require.NoError(t, repo.Save(ctx, r))
	}

	found, err := repo.FindUndispatched(ctx)

	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, pending.ID(), found[0].ID())
}

func TestFindSkipsMalformedRowsSuccess(t *testing.T) {
	testDB := testutil.SetupSQLiteDB(t)
	repo := repository.NewReminderRepository(testDB.DB, time.UTC)
	ctx := context.Background()
	base := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	valid := createValidReminder(t, base, domain.RecurrenceDaily)
	corrupted := createValidReminder(t, base, domain.RecurrenceDaily)
	require.NoError(t, repo.Save(ctx, valid))
	require.NoError(t, repo.Save(ctx, corrupted))

	require.NoError(t, testDB.DB.Exec(
		"UPDATE reminders SET recurrence = ? WHERE id = ?", "monthly", corrupted.ID().String(),
	).Error)

	tests := []struct {
		name string
		find func(context.Context) ([]*domain.Reminder, error)
	}{
		{name: "find all", find: repo.FindAll},
		{name: "find undispatched", find: repo.FindUndispatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := tt.find(ctx)

			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, valid.ID(), found[0].ID())
		})
	}

	_, err := repo.FindByID(ctx, corrupted.ID())
	assert.Error(t, err)
}

func TestUpdateSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), domain.RecurrenceDaily)
	require.NoError(t, repo.Save(ctx, r))

	require.NoError(t, r.MarkDispatched())
	domain.NewRecurrenceAdvancer(domain.CatchUpFixed).Advance(r, r.ScheduledAt())

	err := repo.Update(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.Version())

	found, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC).Equal(found.ScheduledAt()))
	assert.False(t, found.IsDispatched())
	assert.Equal(t, int64(2), found.Version())
}

func TestUpdateWritesFalseFlagsSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), domain.RecurrenceNone)
	r.Dismiss()
	require.NoError(t, repo.Save(ctx, r))

	r.Reschedule(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Update(ctx, r))

	found, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.False(t, found.IsDone())
	assert.False(t, found.IsDispatched())
}

func TestUpdateError(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		setup       func(t *testing.T, repo domain.ReminderRepository) *domain.Reminder
		expectedErr error
	}{
		{
			name: "missing reminder",
			setup: func(t *testing.T, _ domain.ReminderRepository) *domain.Reminder {
				return createValidReminder(t, time.Now(), domain.RecurrenceNone)
			},
			expectedErr: domain.ErrReminderNotFound,
		},
		{
			name: "stale version",
			setup: func(t *testing.T, repo domain.ReminderRepository) *domain.Reminder {
				r := createValidReminder(t, time.Now(), domain.RecurrenceDaily)
				require.NoError(t, repo.Save(ctx, r))

				winner, err := repo.FindByID(ctx, r.ID())
				require.NoError(t, err)
				require.NoError(t, winner.Snooze(5))
				require.NoError(t, repo.Update(ctx, winner))

				return r
			},
			expectedErr: domain.ErrReminderConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := setupRepository(t)
			r := tt.setup(t, repo)

			err := repo.Update(ctx, r)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestConcurrentClaimSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC), domain.RecurrenceNone)
	require.NoError(t, repo.Save(ctx, r))

	first, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)

	require.NoError(t, first.MarkDispatched())
	require.NoError(t, second.MarkDispatched())

	assert.NoError(t, repo.Update(ctx, first))
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrReminderConflict)
}

func TestDeleteSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Now(), domain.RecurrenceNone)
	require.NoError(t, repo.Save(ctx, r))

	err := repo.Delete(ctx, r.ID())
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, r.ID())
	assert.ErrorIs(t, err, domain.ErrReminderNotFound)
}

func TestDeleteError(t *testing.T) {
	repo := setupRepository(t)

	err := repo.Delete(context.Background(), domain.NewReminderID())

	assert.ErrorIs(t, err, domain.ErrReminderNotFound)
}

func TestWithTxRollbackSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	r := createValidReminder(t, time.Now(), domain.RecurrenceNone)

	err := repo.WithTx(ctx, func(txRepo domain.ReminderRepository) error {
		if err := txRepo.Save(ctx, r); err != nil {
			return err
		}

		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	_, err = repo.FindByID(ctx, r.ID())
	assert.ErrorIs(t, err, domain.ErrReminderNotFound)
}

func TestWithTxCommitSuccess(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	r := createValidReminder(t, time.Now(), domain.RecurrenceNone)

	err := repo.WithTx(ctx, func(txRepo domain.ReminderRepository) error {
		return txRepo.Save(ctx, r)
	})
	require.NoError(t, err)

	_, err = repo.FindByID(ctx, r.ID())
	assert.NoError(t, err)
}

func TestPostgresUpdateConflictSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := testutil.SetupTestDB(t)
	defer testDB.TeardownTestDB(t)

	repo := repository.NewReminderRepository(testDB.DB, time.UTC)
	ctx := context.Background()

	r := createValidReminder(t, time.Now().Truncate(time.Microsecond), domain.RecurrenceDaily)
	require.NoError(t, repo.Save(ctx, r))

	first, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)

	require.NoError(t, first.MarkDispatched())
	require.NoError(t, second.MarkDispatched())

	require.NoError(t, repo.Update(ctx, first))
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrReminderConflict)

	found, err := repo.FindByID(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(2), found.Version())
	assert.True(t, found.IsDispatched())
}
