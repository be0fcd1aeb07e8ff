package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsTrendMonitor/internal/cache"
	"NewsTrendMonitor/internal/jobs"
	"NewsTrendMonitor/internal/ports"
)

// Sweeper periodically evicts expired cache entries and stale jobs so both
// stores stay bounded between requests.
type Sweeper struct {
	cache      *cache.ResultCache
	dispatcher *jobs.Dispatcher
	jobMaxAge  time.Duration

	cacheDriver ports.Scheduler
	jobDriver   ports.Scheduler
	logger      *slog.Logger
}

// NewSweeper wires the two stores to their cleanup schedules.
func NewSweeper(c *cache.ResultCache, d *jobs.Dispatcher, jobMaxAge time.Duration,
	cacheDriver, jobDriver ports.Scheduler, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cache:       c,
		dispatcher:  d,
		jobMaxAge:   jobMaxAge,
		cacheDriver: cacheDriver,
		jobDriver:   jobDriver,
		logger:      logger,
	}
}

// Start launches both cleanup loops. Sweeps run until the context ends or
// Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.cache != nil && s.cacheDriver != nil {
		err := s.cacheDriver.Start(ctx, func(time.Time) {
			if removed := s.cache.SweepExpired(); removed > 0 {
				s.debug("cache sweep", "removed", removed)
			}
		})
		if err != nil {
			return err
		}
	}

	if s.dispatcher != nil && s.jobDriver != nil {
		err := s.jobDriver.Start(ctx, func(time.Time) {
			if removed := s.dispatcher.SweepOlderThan(s.jobMaxAge); removed > 0 {
				s.debug("job sweep", "removed", removed)
			}
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Stop halts both loops.
func (s *Sweeper) Stop(ctx context.Context) error {
	if s.cacheDriver != nil {
		if err := s.cacheDriver.Stop(ctx); err != nil {
			return err
		}
	}
	if s.jobDriver != nil {
		if err := s.jobDriver.Stop(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweeper) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
