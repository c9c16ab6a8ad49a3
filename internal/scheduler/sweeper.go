// Package scheduler runs periodic maintenance over the task store.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"gamelife/internal/game"
)

// OverdueMarker moves open tasks past their deadline to OVERDUE.
type OverdueMarker interface {
	MarkOverdue(ctx context.Context, cutoff time.Time) ([]int64, error)
}

// Sweeper periodically marks open tasks whose due time has passed as
// OVERDUE. It never awards or deducts XP.
type Sweeper struct {
	store    OverdueMarker
	interval time.Duration
	clock    game.Clock
	logger   *slog.Logger
	onSweep  func([]int64)
}

// Option configures a Sweeper.
type Option func(*Sweeper)

func WithClock(clock game.Clock) Option {
	return func(s *Sweeper) { s.clock = clock }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

// WithOnSweep registers a callback invoked after every pass that marked at
// least one task.
func WithOnSweep(fn func(ids []int64)) Option {
	return func(s *Sweeper) { s.onSweep = fn }
}

// NewSweeper constructs a Sweeper running every interval.
func NewSweeper(st OverdueMarker, interval time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		store:    st,
		interval: interval,
		clock:    game.SystemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// SweepOnce runs a single pass and returns the ids it marked.
func (s *Sweeper) SweepOnce(ctx context.Context) ([]int64, error) {
	ids, err := s.store.MarkOverdue(ctx, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("mark overdue: %w", err)
	}
	if len(ids) > 0 {
		s.logger.Info("tasks marked overdue", "count", len(ids), "task_ids", ids)
		if s.onSweep != nil {
			s.onSweep(ids)
		}
	} else {
		s.logger.Debug("overdue sweep found nothing")
	}
	return ids, nil
}

// Start runs a pass immediately and then every interval until ctx is done.
// It blocks and returns after the scheduler has shut down.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", s.interval)
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("overdue sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule sweep: %w", err)
	}

	s.logger.Info("overdue sweeper started", "interval", s.interval)
	sched.Start()

	<-ctx.Done()

	if err := sched.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	s.logger.Info("overdue sweeper stopped")
	return nil
}
