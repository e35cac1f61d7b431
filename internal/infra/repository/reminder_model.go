package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

type ReminderModel struct {
	ID             string    `gorm:"column:id;type:varchar(36);primaryKey"`
	Category       string    `gorm:"column:category;type:varchar(64);not null"`
	Title          string    `gorm:"column:title;type:varchar(200);not null"`
	ScheduledAt    time.Time `gorm:"column:scheduled_at;not null;index:idx_reminders_scheduled_at"`
	AdvanceMinutes int       `gorm:"column:advance_minutes;not null;default:0"`
	Recurrence     string    `gorm:"column:recurrence;type:varchar(16);not null"`
	Notes          string    `gorm:"column:notes;type:text;not null;default:''"`
	Dispatched     bool      `gorm:"column:dispatched;not null;default:false;index:idx_reminders_pending"`
	Done           bool      `gorm:"column:done;not null;default:false;index:idx_reminders_pending"`
	Version        int64     `gorm:"column:version;not null;default:1"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time `gorm:"column:updated_at;not null"`
}

func (ReminderModel) TableName() string {
	return "reminders"
}

// AutoMigrate creates or alters the reminders table for the connected dialect.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&ReminderModel{})
}

// ToEntity rebuilds the domain entity. Stored instants are converted to loc so
// that daily and weekly advances keep the wall-clock time of the reminder's zone.
func (m *ReminderModel) ToEntity(loc *time.Location) (*domain.Reminder, error) {
	id, err := domain.ReminderIDFromString(m.ID)
	if err != nil {
		return nil, err
	}

	category, err := domain.NewCategory(m.Category)
	if err != nil {
		return nil, err
	}

	advance, err := domain.NewAdvanceNotice(m.AdvanceMinutes)
	if err != nil {
		return nil, err
	}

	recurrence, err := domain.NewRecurrence(m.Recurrence)
	if err != nil {
		return nil, err
	}

	return domain.Reconstitute(
		id,
		category,
		m.Title,
		inLocation(m.ScheduledAt, loc),
		advance,
		recurrence,
		m.Notes,
		m.Dispatched,
		m.Done,
		m.Version,
		inLocation(m.CreatedAt, loc),
		inLocation(m.UpdatedAt, loc),
	), nil
}

func FromEntity(e *domain.Reminder) *ReminderModel {
	return &ReminderModel{
		ID:             e.ID().String(),
		Category:       e.Category().String(),
		Title:          e.Title(),
		ScheduledAt:    e.ScheduledAt(),
		AdvanceMinutes: e.Advance().Minutes(),
		Recurrence:     e.Recurrence().String(),
		Notes:          e.Notes(),
		Dispatched:     e.IsDispatched(),
		Done:           e.IsDone(),
		Version:        e.Version(),
		CreatedAt:      e.CreatedAt(),
		UpdatedAt:      e.UpdatedAt(),
	}
}

// mutableColumns lists every column a compare-and-swap update writes. A map is
// used so that false and zero values are written too.
func (m *ReminderModel) mutableColumns() map[string]any {
	return map[string]any{
		"category":        m.Category,
		"title":           m.Title,
		"scheduled_at":    m.ScheduledAt,
		"advance_minutes": m.AdvanceMinutes,
		"recurrence":      m.Recurrence,
		"notes":           m.Notes,
		"dispatched":      m.Dispatched,
		"done":            m.Done,
		"version":         m.Version + 1,
		"updated_at":      m.UpdatedAt,
	}
}

func inLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}

	return t.In(loc)
}
