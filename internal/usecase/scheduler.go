package usecase

import (
	"context"
	"log/slog"
	"time"

	"FeaturedSelector/internal/ports"
	"FeaturedSelector/internal/prng"
)

// Scheduler wires the ticker driver with the fetch and build use cases.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	location *time.Location
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring builds. Periods are
// computed from the trigger time in loc.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, loc *time.Location, logger *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, location: loc, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	return s.driver.Start(ctx, func(trigger time.Time) {
		s.RunOnce(ctx, trigger)
	})
}

// RunOnce refreshes the item snapshot and rebuilds the period containing trigger.
// A failed fetch falls back to the existing snapshot. Builds within one period
// are deterministic, so repeated ticks republish the same set.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) {
	if _, err := s.pipeline.Fetch(ctx); err != nil {
		s.logger.Warn("scheduled fetch failed, building from existing items", "error", err)
	}

	period := prng.PeriodOf(trigger.In(s.location))
	if _, err := s.pipeline.Build(ctx, period); err != nil {
		s.logger.Error("scheduled build failed", "period", period.Key, "error", err)
	}
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
