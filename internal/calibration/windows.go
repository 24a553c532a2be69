package calibration

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"
	"github.com/patrickmn/go-cache"

	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"github.com/databirdlab/densitycal/internal/datastore/repository"
	"github.com/databirdlab/densitycal/internal/errors"
	"github.com/databirdlab/densitycal/internal/geo"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

// maxCurvePairs caps CurveSummary.SamplePairs.
const maxCurvePairs = 50

// RebuildWindows deletes every calibration window and re-derives the set
// from the current surveys. The delete and all inserts share one
// transaction, so a failure leaves the previous set in place.
//
// Skipped candidates count pairs that could not be evaluated: a missing ARU
// record, too few calls, an undated survey, a drone survey without a
// footprint or with zero area. Pairs that are too far apart in time or space
// are not candidates and are not counted.
func (e *Engine) RebuildWindows(ctx context.Context, opts RebuildOptions) (*RebuildResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	e.rebuildMu.Lock()
	defer e.rebuildMu.Unlock()

	start := time.Now()
	runID := uuid.NewString()
	ctx = logger.WithTraceID(ctx, runID)
	log := e.log.WithContext(ctx)

	log.Info("rebuilding calibration windows",
		logger.Int("max_days_apart", opts.MaxDaysApart),
		logger.Float64("buffer_meters", opts.BufferMeters),
		logger.Int("min_acoustic_calls", opts.MinAcousticCalls))

	result := &RebuildResult{RunID: runID, RebuildOptions: opts}
	err := e.store.Transaction(ctx, func(tx datastore.Interface) error {
		removed, err := tx.Windows().DeleteAll(ctx)
		if err != nil {
			return err
		}
		log.Debug("removed previous windows", logger.Int64("count", removed))

		windows, skipped, err := e.pairSurveys(ctx, tx, opts)
		if err != nil {
			return err
		}
		if err := tx.Windows().CreateBatch(ctx, windows); err != nil {
			return err
		}
		result.CreatedWindows = len(windows)
		result.SkippedCandidates = skipped
		return nil
	})

	e.observe(metrics.OpRebuild, start, metrics.StatusSuccess, err)
	if err != nil {
		log.Error("rebuild failed, previous windows kept", logger.Error(err))
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.RecordRebuild(result.CreatedWindows, result.SkippedCandidates, float64(e.now().Unix()))
	}

	log.Info("calibration windows rebuilt",
		logger.Int("created", result.CreatedWindows),
		logger.Int("skipped", result.SkippedCandidates),
		logger.Duration("elapsed", time.Since(start)))
	return result, nil
}

// pairSurveys walks every (acoustic survey, ARU, drone survey) candidate.
func (e *Engine) pairSurveys(ctx context.Context, tx datastore.Interface, opts RebuildOptions) ([]*entities.CalibrationWindow, int, error) {
	acousticSurveys, err := tx.Surveys().ListByType(ctx, entities.SurveyTypeAcoustic)
	if err != nil {
		return nil, 0, err
	}
	droneSurveys, err := tx.Surveys().ListByType(ctx, entities.SurveyTypeDrone)
	if err != nil {
		return nil, 0, err
	}

	// Drone summaries are shared by every acoustic pair of this run
	drones := cache.New(cache.NoExpiration, 0)

	var (
		windows []*entities.CalibrationWindow
		skipped int
	)
	for _, acoustic := range acousticSurveys {
		aruIDs, err := tx.Assets().DistinctARUIDs(ctx, acoustic.ID)
		if err != nil {
			return nil, 0, err
		}

		for _, aruID := range aruIDs {
			aru, err := tx.ARUs().GetByID(ctx, aruID)
			if errors.Is(err, repository.ErrARUNotFound) {
				skipped++
				continue
			}
			if err != nil {
				return nil, 0, err
			}

			am, err := acousticMetrics(ctx, tx, acoustic.ID, aruID)
			if err != nil {
				return nil, 0, err
			}
			if am.CallCount < opts.MinAcousticCalls {
				skipped++
				continue
			}

			for _, drone := range droneSurveys {
				if drone.Date == nil || acoustic.Date == nil {
					skipped++
					continue
				}
				days := daysApart(*acoustic.Date, *drone.Date)
				if days > opts.MaxDaysApart {
					continue
				}

				dm, err := cachedDroneMetrics(ctx, tx, drones, drone.ID)
				if err != nil {
					return nil, 0, err
				}
				if dm.Bounds == nil {
					skipped++
					continue
				}
				if !geo.PointInBoundsWithBuffer(aru.Lat, aru.Lon, dm.Bounds, opts.BufferMeters) {
					continue
				}
				if dm.AreaHectares <= 0 {
					skipped++
					continue
				}

				windows = append(windows, &entities.CalibrationWindow{
					AcousticSurveyID:       acoustic.ID,
					VisualSurveyID:         drone.ID,
					ARUID:                  aruID,
					DaysApart:              days,
					BufferMeters:           opts.BufferMeters,
					AcousticCallCount:      am.CallCount,
					AcousticAssetCount:     am.AssetCount,
					AcousticCallsPerAsset:  am.CallsPerAsset,
					DroneDetectionCount:    dm.DetectionCount,
					DroneAreaHectares:      dm.AreaHectares,
					DroneDensityPerHectare: dm.DensityPerHectare,
				})
			}
		}
	}
	return windows, skipped, nil
}

func cachedDroneMetrics(ctx context.Context, tx datastore.Interface, c *cache.Cache, surveyID uint) (droneSummary, error) {
	key := strconv.FormatUint(uint64(surveyID), 10)
	if v, ok := c.Get(key); ok {
		return v.(droneSummary), nil
	}
	dm, err := droneMetrics(ctx, tx, surveyID)
	if err != nil {
		return droneSummary{}, err
	}
	c.Set(key, dm, cache.NoExpiration)
	return dm, nil
}

// daysApart is the absolute difference of the two calendar dates in UTC.
func daysApart(a, b time.Time) int {
	da := truncateToDate(a)
	db := truncateToDate(b)
	days := int(db.Sub(da).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// truncateToDate keeps the calendar day of t in its own location.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ListWindows returns windows with at least minCalls acoustic calls, closest
// in time first and newest first within a day distance. limit 0 means no
// limit.
func (e *Engine) ListWindows(ctx context.Context, minCalls, limit int) ([]WindowRecord, error) {
	if minCalls < 0 || limit < 0 {
		return nil, validationError("min_calls and limit must be >= 0, got %d and %d", minCalls, limit)
	}
	rows, err := e.store.Windows().List(ctx, repository.WindowFilter{MinCalls: minCalls, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]WindowRecord, 0, len(rows))
	for _, w := range rows {
		out = append(out, toWindowRecord(w))
	}
	return out, nil
}

func toWindowRecord(w *entities.CalibrationWindow) WindowRecord {
	return WindowRecord{
		ID:                     w.ID,
		AcousticSurveyID:       w.AcousticSurveyID,
		VisualSurveyID:         w.VisualSurveyID,
		ARUID:                  w.ARUID,
		DaysApart:              w.DaysApart,
		BufferMeters:           w.BufferMeters,
		AcousticCallCount:      w.AcousticCallCount,
		AcousticAssetCount:     w.AcousticAssetCount,
		AcousticCallsPerAsset:  w.AcousticCallsPerAsset,
		DroneDetectionCount:    w.DroneDetectionCount,
		DroneAreaHectares:      w.DroneAreaHectares,
		DroneDensityPerHectare: w.DroneDensityPerHectare,
		CreatedAt:              w.CreatedAt,
	}
}

// CurveSummary reports the median of density / calls-per-asset over windows
// with a positive call rate.
func (e *Engine) CurveSummary(ctx context.Context, minCalls int) (*CurveSummary, error) {
	if minCalls < 0 {
		return nil, validationError("min_calls must be >= 0, got %d", minCalls)
	}
	start := time.Now()

	rows, err := e.store.Windows().ListForTraining(ctx, minCalls)
	if err != nil {
		e.observe(metrics.OpCurve, start, "", err)
		return nil, err
	}

	summary := summarizeCurve(rows)
	e.observe(metrics.OpCurve, start, statusFor(summary.Message), nil)
	return summary, nil
}

func summarizeCurve(rows []*entities.CalibrationWindow) *CurveSummary {
	if len(rows) == 0 {
		return &CurveSummary{Message: MsgNoWindowsForCurve}
	}

	var (
		ratios stats.Float64Data
		pairs  []CurvePair
	)
	for _, w := range rows {
		x, y := w.AcousticCallsPerAsset, w.DroneDensityPerHectare
		if x > 0 && y >= 0 {
			ratios = append(ratios, y/x)
			pairs = append(pairs, CurvePair{XCallsPerAsset: x, YDensityPerHa: y})
		}
	}
	if len(ratios) == 0 {
		return &CurveSummary{WindowCount: len(rows), Message: MsgNoPositiveCallRate}
	}

	median, _ := stats.Median(ratios)
	return &CurveSummary{
		WindowCount: len(rows),
		UsableCount: len(ratios),
		MedianRatio: &median,
		Notes:       curveNotes,
		SamplePairs: pairs[:min(len(pairs), maxCurvePairs)],
	}
}
