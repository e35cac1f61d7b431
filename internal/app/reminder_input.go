package app

import "time"

type CreateReminderInput struct {
	Type           string
	Title          string
	Date           string
	Time           string
	Repeat         string
	AdvanceMinutes int
	Notes          string
}

// UpdateReminderInput is a partial update. Nil fields are left unchanged.
type UpdateReminderInput struct {
	ID             string
	Type           *string
	Title          *string
	Date           *string
	Time           *string
	Repeat         *string
	AdvanceMinutes *int
	Notes          *string
}

type DeleteReminderInput struct {
	ID string
}

type GetDueRemindersInput struct {
	// Now defaults to the use case clock when zero.
	Now time.Time
}

type MarkNotifiedInput struct {
	ID string
}

type SnoozeReminderInput struct {
	ID      string
	Minutes int
}

type DismissReminderInput struct {
	ID string
}
