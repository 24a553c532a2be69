package calibration

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowsFor(groups ...uint) *FeatureSet {
	set := &FeatureSet{FeatureNames: []string{FeatureCallsPerHour, FeatureCallsPerAsset}}
	for i, g := range groups {
		x := float64(i + 1)
		set.Rows = append(set.Rows, FeatureRow{
			WindowID:       uint(i + 1),
			VisualSurveyID: g,
			TargetDensity:  2 * x,
			Features:       map[string]float64{FeatureCallsPerHour: x, FeatureCallsPerAsset: x},
		})
	}
	return set
}

func TestBacktest_InsufficientData(t *testing.T) {
	t.Parallel()

	tooFew := backtest(rowsFor(1, 2))
	assert.Equal(t, MsgBacktestTooFewRows, tooFew.Message)
	assert.Equal(t, 2, tooFew.WindowCount)
	assert.Nil(t, tooFew.Overall)
	assert.NotNil(t, tooFew.Folds)
	assert.Empty(t, tooFew.Folds)

	oneDrone := backtest(rowsFor(7, 7, 7))
	assert.Equal(t, MsgBacktestTooFewDrone, oneDrone.Message)
	assert.Equal(t, 3, oneDrone.WindowCount)
	assert.Nil(t, oneDrone.Overall)
}

func TestBacktest_GroupsByDroneSurvey(t *testing.T) {
	t.Parallel()

	report := backtest(rowsFor(9, 4, 9, 4))
	require.NotNil(t, report.Overall)
	assert.Empty(t, report.Message)
	require.Len(t, report.Folds, 2)

	assert.Equal(t, uint(4), report.Folds[0].HeldOutVisualSurveyID)
	assert.Equal(t, uint(9), report.Folds[1].HeldOutVisualSurveyID)
	for _, fold := range report.Folds {
		assert.Equal(t, 2, fold.TrainWindows)
		assert.Equal(t, 2, fold.TestWindows)
	}
	assert.InDelta(t, 0, report.Overall.Linear.RMSE, 1e-9)
}

func TestBacktestReport_Series(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	load(t, store, series())
	engine, registry := newTestEngine(t, store)
	_, err := engine.RebuildWindows(t.Context(), DefaultRebuildOptions())
	require.NoError(t, err)

	report, err := engine.BacktestReport(t.Context(), 1, 5)
	require.NoError(t, err)
	require.NotNil(t, report.Overall)
	assert.Equal(t, 3, report.WindowCount)
	assert.Len(t, report.Folds, 3)
	assert.Equal(t, []string{"Tui", "Kaka"}, report.SpeciesFeatures)

	// density is proportional to the call rate, so only the linear family
	// extrapolates exactly from two drone surveys
	assert.InDelta(t, 0, report.Overall.Linear.RMSE, 1e-6)
	assert.Greater(t, report.Overall.Quadratic.RMSE, report.Overall.Linear.RMSE)
	assert.Equal(t, ModelLinear, report.Overall.RecommendedModel)

	count, err := testutil.GatherAndCount(registry, "calibration_backtest_rmse")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestTrainSummary(t *testing.T) {
	t.Parallel()

	t.Run("no windows", func(t *testing.T) {
		t.Parallel()
		engine, _ := newTestEngine(t, newTestStore(t))
		summary, err := engine.TrainSummary(t.Context(), 1, 5)
		require.NoError(t, err)
		assert.Equal(t, MsgNoTrainingWindows, summary.Message)
		assert.Nil(t, summary.Model)
		assert.Zero(t, summary.WindowCount)
	})

	t.Run("series", func(t *testing.T) {
		t.Parallel()
		store := newTestStore(t)
		load(t, store, series())
		engine, _ := newTestEngine(t, store)
		_, err := engine.RebuildWindows(t.Context(), DefaultRebuildOptions())
		require.NoError(t, err)

		summary, err := engine.TrainSummary(t.Context(), 1, 5)
		require.NoError(t, err)
		assert.Empty(t, summary.Message)
		assert.Equal(t, 3, summary.WindowCount)
		require.NotNil(t, summary.Model)

		model := summary.Model
		assert.NotEmpty(t, model.ID)
		assert.Equal(t, 3, model.WindowCount)
		assert.Equal(t, []string{
			FeatureCallsPerHour,
			FeatureCallsPerAsset,
			"sp_tui_calls_per_hour",
			"sp_kaka_calls_per_hour",
		}, model.FeatureNames)
		assert.Len(t, model.Linear.Coef, 4)
		assert.Contains(t, []string{ModelLinear, ModelQuadratic}, model.Recommended)
		assert.InDelta(t, 0, model.LinearMetrics.RMSE, 1e-6)
		assert.InDelta(t, 1, model.LinearMetrics.R2, 1e-6)
		assert.InDelta(t, model.ResidualStd(model.Recommended), summary.ResidualStd, 1e-12)
	})
}
