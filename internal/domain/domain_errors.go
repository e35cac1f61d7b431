package domain

import "errors"

var (
	ErrReminderNotFound = errors.New("reminder not found")
	ErrReminderConflict = errors.New("reminder was modified concurrently")

	ErrInvalidReminderID = errors.New("invalid reminder ID")

	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrTitleTooLong      = errors.New("title must not exceed 200 characters")
	ErrCategoryTooLong   = errors.New("type must not exceed 64 characters")
	ErrNotesTooLong      = errors.New("notes must not exceed 1000 characters")
	ErrInvalidDate       = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidClock      = errors.New("time must be formatted as HH:MM")
	ErrInvalidAdvance    = errors.New("advance minutes must be between 0 and 10080")
	ErrInvalidRecurrence = errors.New("repeat must be one of none, daily, weekly")
	ErrInvalidSnooze     = errors.New("snooze minutes must be between 1 and 1440")

	ErrAlreadyDispatched = errors.New("reminder occurrence is already dispatched")
	ErrReminderDone      = errors.New("reminder is done")

	ErrChannelUnavailable = errors.New("notification channel unavailable")
)
