package app

import (
	"errors"
	"fmt"

	"github.com/KasumiMercury/primind-health-remind/internal/domain"
)

var fieldByError = []struct {
	err   error
	field string
}{
	{domain.ErrEmptyTitle, "title"},
	{domain.ErrTitleTooLong, "title"},
	{domain.ErrCategoryTooLong, "type"},
	{domain.ErrNotesTooLong, "notes"},
	{domain.ErrInvalidDate, "date"},
	{domain.ErrInvalidClock, "time"},
	{domain.ErrInvalidAdvance, "advanceMinutes"},
	{domain.ErrInvalidRecurrence, "repeat"},
	{domain.ErrInvalidSnooze, "minutes"},
}

// validationFrom converts a domain validation error into a ValidationError
// naming the wire field it came from.
func validationFrom(err error) error {
	for _, f := range fieldByError {
		if errors.Is(err, f.err) {
			return NewValidationError(f.field, f.err.Error())
		}
	}

	return fmtInternal(err)
}

func fmtInternal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternalError, err)
}
