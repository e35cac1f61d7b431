package app

import (
	"context"
	"time"
)

type DispatchUseCase interface {
	// ProcessDue runs one due check at now. A store failure while loading
	// candidates abandons the tick; failures on a single reminder do not.
	ProcessDue(ctx context.Context, now time.Time) (ProcessDueOutput, error)
}

type ProcessDueOutput struct {
	Due int
	// Claimed occurrences were recorded as dispatched by this call.
	Claimed int
	// Skipped occurrences were claimed by another writer first.
	Skipped     int
	Delivered   int
	Undelivered int
	Failed      int
	Deleted     int
}
