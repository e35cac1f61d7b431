package domain

import (
	"github.com/google/uuid"
)

// ReminderID identifies a reminder for its whole lifetime. New IDs are UUIDv7 so
// that they sort by creation time in the store.
type ReminderID struct {
	value uuid.UUID
}

func NewReminderID() ReminderID {
	id, err := uuid.NewV7()
	if err != nil {
		return ReminderID{value: uuid.New()}
	}

	return ReminderID{value: id}
}

func ReminderIDFromString(s string) (ReminderID, error) {
	id, err := uuid.Parse(s)
	if err != nil || id == uuid.Nil {
		return ReminderID{}, ErrInvalidReminderID
	}

	return ReminderID{value: id}, nil
}

func ReminderIDFromUUID(id uuid.UUID) ReminderID {
	return ReminderID{value: id}
}

func (r ReminderID) String() string {
	return r.value.String()
}

func (r ReminderID) UUID() uuid.UUID {
	return r.value
}

func (r ReminderID) IsZero() bool {
	return r.value == uuid.Nil
}

func (r ReminderID) Equals(other ReminderID) bool {
	return r.value == other.value
}
