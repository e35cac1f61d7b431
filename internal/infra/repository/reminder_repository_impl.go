package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

type reminderRepositoryImpl struct {
	db  *gorm.DB
	loc *time.Location
}

// NewReminderRepository returns a gorm-backed store. Entities are read back in
// loc; a nil loc keeps whatever zone the driver returns.
func NewReminderRepository(db *gorm.DB, loc *time.Location) domain.ReminderRepository {
	return &reminderRepositoryImpl{
		db:  db,
		loc: loc,
	}
}

func (r *reminderRepositoryImpl) Save(ctx context.Context, reminder *domain.Reminder) error {
	slog.Debug("saving reminder to database",
		"reminder_id", reminder.ID().String(),
	)

	m := FromEntity(reminder)

	result := r.db.WithContext(ctx).Create(m)
	if result.Error != nil {
		slog.Error("failed to save reminder to database",
			"reminder_id", reminder.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	slog.Debug("reminder saved to database",
		"reminder_id", reminder.ID().String(),
	)

	return nil
}

func (r *reminderRepositoryImpl) FindByID(ctx context.Context, id domain.ReminderID) (*domain.Reminder, error) {
	slog.Debug("finding reminder by ID",
		"reminder_id", id.String(),
	)

	var m ReminderModel

	result := r.db.WithContext(ctx).Where("id = ?", id.String()).First(&m)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			slog.Debug("reminder not found",
				"reminder_id", id.String(),
			)

			return nil, domain.ErrReminderNotFound
		}

		slog.Error("failed to find reminder by ID",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return nil, result.Error
	}

	return m.ToEntity(r.loc)
}

func (r *reminderRepositoryImpl) FindAll(ctx context.Context) ([]*domain.Reminder, error) {
	var models []ReminderModel

	result := r.db.WithContext(ctx).Order("scheduled_at ASC").Order("id ASC").Find(&models)
	if result.Error != nil {
		slog.Error("failed to list reminders",
			"error", result.Error,
		)

		return nil, result.Error
	}

	return r.toEntities(models), nil
}

func (r *reminderRepositoryImpl) FindUndispatched(ctx context.Context) ([]*domain.Reminder, error) {
	var models []ReminderModel

	result := r.db.WithContext(ctx).
		Where("done = ? AND dispatched = ?", false, false).
		Order("scheduled_at ASC").
		Find(&models)
	if result.Error != nil {
		slog.Error("failed to find undispatched reminders",
			"error", result.Error,
		)

		return nil, result.Error
	}

	reminders := r.toEntities(models)

	slog.Debug("undispatched reminders found",
		"count", len(reminders),
	)

	return reminders, nil
}

func (r *reminderRepositoryImpl) Update(ctx context.Context, reminder *domain.Reminder) error {
	slog.Debug("updating reminder in database",
		"reminder_id", reminder.ID().String(),
		"version", reminder.Version(),
	)

	m := FromEntity(reminder)

	result := r.db.WithContext(ctx).
		Model(&ReminderModel{}).
		Where("id = ? AND version = ?", m.ID, m.Version).
		Updates(m.mutableColumns())
	if result.Error != nil {
		slog.Error("failed to update reminder in database",
			"reminder_id", reminder.ID().String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&ReminderModel{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			slog.Debug("reminder not found for update",
				"reminder_id", reminder.ID().String(),
			)

			return domain.ErrReminderNotFound
		}

		slog.Info("reminder version moved, update rejected",
			"reminder_id", reminder.ID().String(),
			"version", reminder.Version(),
		)

		return domain.ErrReminderConflict
	}

	reminder.IncrementVersion()

	slog.Debug("reminder updated in database",
		"reminder_id", reminder.ID().String(),
		"version", reminder.Version(),
	)

	return nil
}

func (r *reminderRepositoryImpl) Delete(ctx context.Context, id domain.ReminderID) error {
	slog.Debug("deleting reminder from database",
		"reminder_id", id.String(),
	)

	result := r.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&ReminderModel{})
	if result.Error != nil {
		slog.Error("failed to delete reminder from database",
			"reminder_id", id.String(),
			"error", result.Error,
		)

		return result.Error
	}

	if result.RowsAffected == 0 {
		slog.Debug("reminder not found for deletion",
			"reminder_id", id.String(),
		)

		return domain.ErrReminderNotFound
	}

	slog.Debug("reminder deleted from database",
		"reminder_id", id.String(),
	)

	return nil
}

func (r *reminderRepositoryImpl) WithTx(ctx context.Context, fn func(repo domain.ReminderRepository) error) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		slog.Error("failed to begin transaction",
			"error", tx.Error,
		)

		return tx.Error
	}

	txRepo := &reminderRepositoryImpl{db: tx, loc: r.loc}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback().Error; rbErr != nil {
			slog.Error("failed to rollback transaction",
				"error", rbErr,
				"original_error", err,
			)
		}

		return err
	}

	if err := tx.Commit().Error; err != nil {
		slog.Error("failed to commit transaction",
			"error", err,
		)

		return err
	}

	return nil
}

// toEntities skips rows that no longer map to a valid reminder.
func (r *reminderRepositoryImpl) toEntities(models []ReminderModel) []*domain.Reminder {
	reminders := make([]*domain.Reminder, 0, len(models))
	for _, m := range models {
		reminder, err := m.ToEntity(r.loc)
		if err != nil {
			slog.Warn("skipping malformed reminder row",
				"reminder_id", m.ID,
				"error", err,
			)

			continue
		}

		reminders = append(reminders, reminder)
	}

	return reminders
}
