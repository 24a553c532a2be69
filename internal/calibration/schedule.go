package calibration

import (
	"context"
	"time"

	"github.com/databirdlab/densitycal/internal/logger"
)

// Scheduler rebuilds calibration windows on a fixed interval. A failed run
// is logged and retried at the next tick.
type Scheduler struct {
	engine     *Engine
	opts       RebuildOptions
	interval   time.Duration
	runOnStart bool
	log        logger.Logger

	// OnRebuild, when set, is called after every scheduled run.
	OnRebuild func(*RebuildResult, error)
}

// NewScheduler creates a Scheduler. An interval of 0 disables periodic runs.
func NewScheduler(engine *Engine, opts RebuildOptions, interval time.Duration, runOnStart bool) *Scheduler {
	return &Scheduler{
		engine:     engine,
		opts:       opts,
		interval:   interval,
		runOnStart: runOnStart,
		log:        engine.log.Module("scheduler"),
	}
}

// Run blocks until ctx is cancelled. It returns nil on cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.opts.Validate(); err != nil {
		return err
	}
	s.log.Info("rebuild scheduler started",
		logger.Duration("interval", s.interval),
		logger.Bool("run_on_start", s.runOnStart))

	if s.runOnStart {
		s.runOnce(ctx)
	}

	if s.interval <= 0 {
		<-ctx.Done()
		s.log.Info("rebuild scheduler stopped")
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("rebuild scheduler stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := s.engine.RebuildWindows(ctx, s.opts)
	if err != nil {
		s.log.Warn("scheduled rebuild failed", logger.Error(err))
	}
	if s.OnRebuild != nil {
		s.OnRebuild(result, err)
	}
}
