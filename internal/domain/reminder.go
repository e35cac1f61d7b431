package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLength = 200
	maxNotesLength = 1000
)

type Reminder struct {
	id          ReminderID
	category    Category
	title       string
	scheduledAt time.Time
	advance     AdvanceNotice
	recurrence  Recurrence
	notes       string
	dispatched  bool
	done        bool
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

func NewReminder(
	category Category,
	title string,
	scheduledAt time.Time,
	advance AdvanceNotice,
	recurrence Recurrence,
	notes string,
) (*Reminder, error) {
	title, err := validateTitle(title)
	if err != nil {
		return nil, err
	}

	notes, err = validateNotes(notes)
	if err != nil {
		return nil, err
	}

	if category == "" {
		category = CategoryGeneral
	}

	if recurrence == "" {
		recurrence = RecurrenceNone
	}

	now := time.Now()

	return &Reminder{
		id:          NewReminderID(),
		category:    category,
		title:       title,
		scheduledAt: scheduledAt,
		advance:     advance,
		recurrence:  recurrence,
		notes:       notes,
		dispatched:  false,
		done:        false,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

func Reconstitute(
	id ReminderID,
	category Category,
	title string,
	scheduledAt time.Time,
	advance AdvanceNotice,
	recurrence Recurrence,
	notes string,
	dispatched bool,
	done bool,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Reminder {
	return &Reminder{
		id:          id,
		category:    category,
		title:       title,
		scheduledAt: scheduledAt,
		advance:     advance,
		recurrence:  recurrence,
		notes:       notes,
		dispatched:  dispatched,
		done:        done,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// DueAt is the effective notify instant: scheduledAt minus the advance notice.
func (r *Reminder) DueAt() time.Time {
	return r.scheduledAt.Add(-r.advance.Duration())
}

// IsDueAt reports whether the current occurrence should be dispatched at now.
// Done and already dispatched reminders are never due.
func (r *Reminder) IsDueAt(now time.Time) bool {
	if r.done || r.dispatched {
		return false
	}

	return !truncateMinute(r.DueAt()).After(truncateMinute(now))
}

// MarkDispatched records that the current occurrence has been handed to the
// dispatcher. It must be followed by an advance before the entity is persisted.
func (r *Reminder) MarkDispatched() error {
	if r.done {
		return ErrReminderDone
	}

	if r.dispatched {
		return ErrAlreadyDispatched
	}

	r.dispatched = true
	r.updatedAt = time.Now()

	return nil
}

// Snooze defers the current occurrence without touching recurrence, dispatched or done.
func (r *Reminder) Snooze(minutes int) error {
	if minutes < 1 || minutes > MaxSnoozeMinutes {
		return ErrInvalidSnooze
	}

	r.scheduledAt = r.scheduledAt.Add(time.Duration(minutes) * time.Minute)
	r.updatedAt = time.Now()

	return nil
}

// Dismiss marks the reminder as requiring no further action. Dismissing twice is a no-op.
func (r *Reminder) Dismiss() {
	if r.done {
		return
	}

	r.done = true
	r.updatedAt = time.Now()
}

// Reschedule moves the reminder to a new nominal instant. This starts a new
// occurrence, so the dispatched and done flags are cleared.
func (r *Reminder) Reschedule(scheduledAt time.Time) {
	r.scheduledAt = scheduledAt
	r.dispatched = false
	r.done = false
	r.updatedAt = time.Now()
}

func (r *Reminder) Rename(title string) error {
	title, err := validateTitle(title)
	if err != nil {
		return err
	}

	r.title = title
	r.updatedAt = time.Now()

	return nil
}

func (r *Reminder) ChangeNotes(notes string) error {
	notes, err := validateNotes(notes)
	if err != nil {
		return err
	}

	r.notes = notes
	r.updatedAt = time.Now()

	return nil
}

func (r *Reminder) ChangeCategory(category Category) {
	if category == "" {
		category = CategoryGeneral
	}

	r.category = category
	r.updatedAt = time.Now()
}

func (r *Reminder) ChangeAdvance(advance AdvanceNotice) {
	r.advance = advance
	r.updatedAt = time.Now()
}

func (r *Reminder) ChangeRecurrence(recurrence Recurrence) {
	r.recurrence = recurrence
	r.updatedAt = time.Now()
}

// complete and moveTo are the two outcomes of a recurrence advance.
func (r *Reminder) complete() {
	r.done = true
	r.updatedAt = time.Now()
}

func (r *Reminder) moveTo(next time.Time) {
	r.scheduledAt = next
	r.dispatched = false
	r.updatedAt = time.Now()
}

// IncrementVersion is called by a repository after a successful compare-and-swap
// write so the in-memory entity matches the stored row.
func (r *Reminder) IncrementVersion() {
	r.version++
}

func (r *Reminder) ID() ReminderID {
	return r.id
}

func (r *Reminder) Category() Category {
	return r.category
}

func (r *Reminder) Title() string {
	return r.title
}

func (r *Reminder) ScheduledAt() time.Time {
	return r.scheduledAt
}

func (r *Reminder) Advance() AdvanceNotice {
	return r.advance
}

func (r *Reminder) Recurrence() Recurrence {
	return r.recurrence
}

func (r *Reminder) Notes() string {
	return r.notes
}

func (r *Reminder) IsDispatched() bool {
	return r.dispatched
}

func (r *Reminder) IsDone() bool {
	return r.done
}

func (r *Reminder) Version() int64 {
	return r.version
}

func (r *Reminder) CreatedAt() time.Time {
	return r.createdAt
}

func (r *Reminder) UpdatedAt() time.Time {
	return r.updatedAt
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}

	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", ErrTitleTooLong
	}

	return title, nil
}

func validateNotes(notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return "", ErrNotesTooLong
	}

	return notes, nil
}
