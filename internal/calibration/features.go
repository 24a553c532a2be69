package calibration

import (
	"context"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

const (
	// fallbackAssetSeconds is assumed for an asset with no detections.
	fallbackAssetSeconds = 300.0
	secondsPerHour       = 3600.0

	// minEffortHours floors the effort of windows whose effort is unknown.
	minEffortHours = 1.0 / 12.0
	// assetEffortHours is assumed per asset when effort is unknown.
	assetEffortHours = 5.0 / 60.0
)

// FeatureName turns a species name into its feature key,
// e.g. "Tui (Prosthemadera)" becomes "sp_tui_prosthemadera_calls_per_hour".
func FeatureName(species string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(species)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	slug := b.String()
	if slug == "" {
		slug = "unknown"
	}
	return "sp_" + slug + "_calls_per_hour"
}

// effortHours estimates the listening time of an (acoustic survey, ARU) from
// the last detection of each asset. It is 0 when the pair has no assets.
func effortHours(ctx context.Context, store datastore.Interface, surveyID, aruID uint) (float64, error) {
	assets, err := store.Assets().ListBySurveyAndARU(ctx, surveyID, aruID)
	if err != nil {
		return 0, err
	}
	if len(assets) == 0 {
		return 0, nil
	}

	ids := make([]uint, len(assets))
	for i, a := range assets {
		ids[i] = a.ID
	}
	maxEnd, err := store.Detections().MaxEndTimes(ctx, ids)
	if err != nil {
		return 0, err
	}

	var seconds float64
	for _, id := range ids {
		end := maxEnd[id]
		if end == 0 {
			end = fallbackAssetSeconds
		}
		seconds += end
	}
	return max(0, seconds/secondsPerHour), nil
}

// speciesCounter memoises per-pair species counts within one call.
type speciesCounter struct {
	store datastore.Interface
	cache map[[2]uint]map[string]int
	order map[[2]uint][]string
}

func newSpeciesCounter(store datastore.Interface) *speciesCounter {
	return &speciesCounter{
		store: store,
		cache: make(map[[2]uint]map[string]int),
		order: make(map[[2]uint][]string),
	}
}

// counts returns class name -> calls and the class names in query order.
func (s *speciesCounter) counts(ctx context.Context, surveyID, aruID uint) (map[string]int, []string, error) {
	key := [2]uint{surveyID, aruID}
	if c, ok := s.cache[key]; ok {
		return c, s.order[key], nil
	}
	rows, err := s.store.Detections().SpeciesCounts(ctx, surveyID, aruID)
	if err != nil {
		return nil, nil, err
	}
	c := make(map[string]int, len(rows))
	names := make([]string, 0, len(rows))
	for _, r := range rows {
		c[r.ClassName] = int(r.Count)
		names = append(names, r.ClassName)
	}
	s.cache[key], s.order[key] = c, names
	return c, names, nil
}

// topSpecies sums species calls over windows and returns the k largest.
// Ties keep first-seen order, windows being visited by ID.
func topSpecies(ctx context.Context, counter *speciesCounter, windows []*entities.CalibrationWindow, k int) ([]string, error) {
	type total struct {
		name  string
		count int
	}
	var (
		totals []total
		index  = make(map[string]int)
	)
	for _, w := range windows {
		counts, names, err := counter.counts(ctx, w.AcousticSurveyID, w.ARUID)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			i, ok := index[name]
			if !ok {
				i = len(totals)
				index[name] = i
				totals = append(totals, total{name: name})
			}
			totals[i].count += counts[name]
		}
	}

	slices.SortStableFunc(totals, func(a, b total) int { return b.count - a.count })

	out := make([]string, 0, min(k, len(totals)))
	for _, t := range totals[:min(k, len(totals))] {
		out = append(out, t.name)
	}
	return out, nil
}

// FeatureRows builds the feature vector of every window with at least
// minCalls acoustic calls, with the topSpecies most frequent species as
// extra columns.
func (e *Engine) FeatureRows(ctx context.Context, minCalls, topSpecies int) (*FeatureSet, error) {
	if err := validateReadArgs(minCalls, topSpecies); err != nil {
		return nil, err
	}
	start := time.Now()

	var set *FeatureSet
	err := e.read(ctx, func(tx datastore.Interface) error {
		var err error
		set, err = buildFeatureSet(ctx, tx, minCalls, topSpecies)
		return err
	})
	e.observe(metrics.OpFeatures, start, metrics.StatusSuccess, err)
	if err != nil {
		return nil, err
	}
	e.log.Debug("feature rows built",
		logger.Int("rows", len(set.Rows)),
		logger.Int("features", len(set.FeatureNames)))
	return set, nil
}

func buildFeatureSet(ctx context.Context, tx datastore.Interface, minCalls, k int) (*FeatureSet, error) {
	windows, err := tx.Windows().ListForTraining(ctx, minCalls)
	if err != nil {
		return nil, err
	}
	set := &FeatureSet{Rows: []FeatureRow{}, FeatureNames: []string{}, SpeciesFeatures: []string{}}
	if len(windows) == 0 {
		return set, nil
	}

	counter := newSpeciesCounter(tx)
	species, err := topSpecies(ctx, counter, windows, k)
	if err != nil {
		return nil, err
	}
	set.SpeciesFeatures = species
	set.FeatureNames = featureNames(species)

	for _, w := range windows {
		effort, err := effortHours(ctx, tx, w.AcousticSurveyID, w.ARUID)
		if err != nil {
			return nil, err
		}
		if effort <= 0 {
			effort = max(minEffortHours, float64(w.AcousticAssetCount)*assetEffortHours)
		}
		counts, _, err := counter.counts(ctx, w.AcousticSurveyID, w.ARUID)
		if err != nil {
			return nil, err
		}

		features := map[string]float64{
			FeatureCallsPerHour:  safeDiv(float64(w.AcousticCallCount), effort),
			FeatureCallsPerAsset: w.AcousticCallsPerAsset,
		}
		for _, sp := range species {
			features[FeatureName(sp)] = safeDiv(float64(counts[sp]), effort)
		}

		set.Rows = append(set.Rows, FeatureRow{
			WindowID:         w.ID,
			AcousticSurveyID: w.AcousticSurveyID,
			VisualSurveyID:   w.VisualSurveyID,
			ARUID:            w.ARUID,
			DaysApart:        w.DaysApart,
			TargetDensity:    w.DroneDensityPerHectare,
			EffortHours:      effort,
			Features:         features,
		})
	}
	return set, nil
}

func featureNames(species []string) []string {
	names := make([]string, 0, len(species)+2)
	names = append(names, FeatureCallsPerHour, FeatureCallsPerAsset)
	for _, sp := range species {
		names = append(names, FeatureName(sp))
	}
	return names
}

// matrix lays rows out in featureNames order; absent features are 0.
func matrix(rows []FeatureRow, featureNames []string) (xs [][]float64, y []float64) {
	xs = make([][]float64, len(rows))
	y = make([]float64, len(rows))
	for i, r := range rows {
		xs[i] = vector(r.Features, featureNames)
		y[i] = r.TargetDensity
	}
	return xs, y
}

func vector(features map[string]float64, featureNames []string) []float64 {
	v := make([]float64, len(featureNames))
	for j, name := range featureNames {
		v[j] = features[name]
	}
	return v
}
