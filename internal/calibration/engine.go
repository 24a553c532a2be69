package calibration

import (
	"context"
	"sync"
	"time"

	"github.com/databirdlab/densitycal/internal/conf"
	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

// Engine runs calibration operations against a store. It is safe for
// concurrent use; rebuilds are serialised, reads are not.
type Engine struct {
	store   datastore.Interface
	log     logger.Logger
	metrics *metrics.CalibrationMetrics

	rebuildMu sync.Mutex
	now       func() time.Time
}

// New creates an Engine. log and m may be nil.
func New(store datastore.Interface, log logger.Logger, m *metrics.CalibrationMetrics) *Engine {
	if log == nil {
		log = logger.Global().Module("calibration")
	}
	return &Engine{
		store:   store,
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

// DefaultRebuildOptions returns the configured pairing defaults.
func DefaultRebuildOptions() RebuildOptions {
	return RebuildOptions{
		MaxDaysApart:     conf.DefaultMaxDaysApart,
		BufferMeters:     conf.DefaultBufferMeters,
		MinAcousticCalls: conf.DefaultMinAcousticCalls,
	}
}

// RebuildOptionsFrom maps calibration settings to rebuild options.
func RebuildOptionsFrom(s *conf.CalibrationSettings) RebuildOptions {
	return RebuildOptions{
		MaxDaysApart:     s.MaxDaysApart,
		BufferMeters:     s.BufferMeters,
		MinAcousticCalls: s.MinAcousticCalls,
	}
}

// Validate rejects negative thresholds.
func (o RebuildOptions) Validate() error {
	switch {
	case o.MaxDaysApart < 0:
		return validationError("max_days_apart must be >= 0, got %d", o.MaxDaysApart)
	case o.BufferMeters < 0:
		return validationError("buffer_meters must be >= 0, got %g", o.BufferMeters)
	case o.MinAcousticCalls < 0:
		return validationError("min_acoustic_calls must be >= 0, got %d", o.MinAcousticCalls)
	}
	return nil
}

func validateReadArgs(minCalls, topSpecies int) error {
	if minCalls < 0 {
		return validationError("min_calls must be >= 0, got %d", minCalls)
	}
	if topSpecies < 0 {
		return validationError("top_species must be >= 0, got %d", topSpecies)
	}
	return nil
}

func validationError(format string, args ...any) error {
	return errors.Newf(format, args...).
		Component("calibration").
		Category(errors.CategoryValidation).
		Build()
}

// read runs fn in one store transaction so every query sees the same
// window set.
func (e *Engine) read(ctx context.Context, fn func(tx datastore.Interface) error) error {
	return e.store.Transaction(ctx, fn)
}

// observe records the outcome of an operation.
func (e *Engine) observe(operation string, start time.Time, status string, err error) {
	if e.metrics == nil {
		return
	}
	if err != nil {
		status = metrics.StatusError
		e.metrics.RecordError(operation, errorType(err))
	}
	e.metrics.RecordOperation(operation, status)
	e.metrics.RecordDuration(operation, time.Since(start).Seconds())
}

func statusFor(message string) string {
	if message != "" {
		return metrics.StatusInsufficient
	}
	return metrics.StatusSuccess
}

func errorType(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
