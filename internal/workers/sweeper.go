package workers

import (
	"context"
	"time"

	"log/slog"

	"github.com/jonboulle/clockwork"
)

type OverdueExpirer interface {
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

type SnapshotInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Sweeper periodically flips pending and active hazards past their expiry to
// expired, replacing the TTL cleanup a document store would do for free.
type Sweeper struct {
	hazards  OverdueExpirer
	cache    SnapshotInvalidator
	clock    clockwork.Clock
	logger   *slog.Logger
	interval time.Duration
}

func NewSweeper(hazards OverdueExpirer, cache SnapshotInvalidator, clock clockwork.Clock, logger *slog.Logger, interval time.Duration) *Sweeper {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		hazards:  hazards,
		cache:    cache,
		clock:    clock,
		logger:   logger,
		interval: interval,
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("expiry sweeper STARTED", slog.Duration("interval", s.interval))

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("expiry sweeper STOPPED", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.Chan():
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.hazards.ExpireOverdue(ctx, s.clock.Now().UTC())
	if err != nil {
		s.logger.Error("expiry sweep failed", slog.Any("error", err))
		return
	}
	if n == 0 {
		return
	}

	s.logger.Info("hazards expired", slog.Int64("count", n))
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("hazard cache invalidate failed", slog.Any("error", err))
	}
}
