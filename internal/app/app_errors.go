package app

import (
	"errors"
	"fmt"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("resource not found")
	ErrConflict         = errors.New("resource was modified concurrently")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrInternalError    = errors.New("internal error")
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError

	return errors.As(err, &validationErr)
}

// storeError classifies a repository error into the use-case taxonomy.
func storeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrReminderNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, domain.ErrReminderConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
}
