package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/KasumiMercury/primind-health-remind/internal/app"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/logging"
	"github.com/KasumiMercury/primind-health-remind/internal/observability/metrics"
)

const DefaultInterval = 30 * time.Second

var ErrAlreadyStarted = errors.New("scheduler already started")

// Locker is a cross-process lease. ok is false when another process holds it.
type Locker interface {
	TryLock(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

type Config struct {
	Interval time.Duration
	// Locker is optional; without it every tick runs.
	Locker  Locker
	Metrics *metrics.ReminderMetrics
	Now     func() time.Time
}

// Scheduler polls the store for due reminders on a fixed interval. Ticks
// never overlap: gocron runs the job in singleton mode and immediate ticks
// requested through Notify share the same mutex.
type Scheduler struct {
	scheduler *gocron.Scheduler
	dispatch  app.DispatchUseCase
	interval  time.Duration
	locker    Locker
	metrics   *metrics.ReminderMetrics
	now       func() time.Time

	tickMu sync.Mutex
	notify chan struct{}

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(dispatch app.DispatchUseCase, cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		dispatch:  dispatch,
		interval:  interval,
		locker:    cfg.Locker,
		metrics:   cfg.Metrics,
		now:       now,
		notify:    make(chan struct{}, 1),
	}
}

// Start schedules the due check and runs the first tick immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(logging.WithModule(ctx, logging.ModuleScheduler))

	if _, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.runTick, ctx); err != nil {
		cancel()

		return fmt.Errorf("failed to schedule due check: %w", err)
	}

	s.cancel = cancel
	s.started = true

	s.wg.Add(1)

	go s.listen(ctx)

	s.scheduler.StartAsync()

	slog.InfoContext(ctx, "scheduler started",
		slog.Duration("interval", s.interval),
		slog.Bool("locking", s.locker != nil),
	)

	return nil
}

// Stop cancels the running tick and waits for the loop to exit. The reminder
// being processed when Stop is called is still finished.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.cancel()
	s.scheduler.Stop()
	s.wg.Wait()

	s.started = false

	slog.Info("scheduler stopped")
}

// Notify requests a tick as soon as possible. Requests made while one is
// already pending are coalesced.
func (s *Scheduler) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Tick runs one due check. It returns nil without checking when the lease is
// held by another process.
func (s *Scheduler) Tick(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx)
		if err != nil {
			s.metrics.RecordTick(ctx, metrics.TickFailed)

			return fmt.Errorf("failed to acquire tick lease: %w", err)
		}

		if !ok {
			slog.DebugContext(ctx, "tick lease held by another process, tick skipped")
			s.metrics.RecordTick(ctx, metrics.TickSkipped)

			return nil
		}

		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				slog.WarnContext(ctx, "failed to release tick lease",
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	start := time.Now()

	out, err := s.dispatch.ProcessDue(ctx, s.now())
	if err != nil {
		s.metrics.RecordTick(ctx, metrics.TickFailed)

		return err
	}

	s.metrics.RecordTick(ctx, metrics.TickCompleted)

	slog.DebugContext(ctx, "tick finished",
		slog.Int("due", out.Due),
		slog.Int("claimed", out.Claimed),
		slog.Duration("elapsed", time.Since(start)),
	)

	return nil
}

func (s *Scheduler) listen(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			s.runTick(ctx)
		}
	}
}

func (s *Scheduler) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	if err := s.Tick(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.InfoContext(ctx, "tick interrupted by shutdown")

			return
		}

		slog.ErrorContext(ctx, "tick failed, retrying next interval",
			slog.String("error", err.Error()),
		)
	}
}
