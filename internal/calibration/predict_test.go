package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/databirdlab/densitycal/internal/errors"
)

func TestClampEstimate(t *testing.T) {
	t.Parallel()

	estimate, interval := clampEstimate(-2, 1)
	assert.Zero(t, estimate)
	assert.Equal(t, Interval{}, interval)

	estimate, interval = clampEstimate(1, 1)
	assert.InDelta(t, 1, estimate, 1e-12)
	assert.Zero(t, interval.Low)
	assert.InDelta(t, 2.96, interval.High, 1e-12)

	estimate, interval = clampEstimate(10, 0.5)
	assert.InDelta(t, 10, estimate, 1e-12)
	assert.InDelta(t, 9.02, interval.Low, 1e-12)
	assert.InDelta(t, 10.98, interval.High, 1e-12)
}

func TestApplyModel(t *testing.T) {
	t.Parallel()

	artifact := &ModelArtifact{
		FeatureNames:   []string{FeatureCallsPerHour, FeatureCallsPerAsset},
		Linear:         LinearModel{Intercept: -5, Coef: []float64{0.5, 1}},
		Quadratic:      QuadraticModel{A0: 1, A1: 0, A2: 1},
		LinearResidStd: 2,
		QuadResidStd:   3,
	}
	features := map[string]float64{FeatureCallsPerHour: 4, "ignored": 100}

	raw, sigma := applyModel(artifact, ModelLinear, features)
	assert.InDelta(t, -3, raw, 1e-12)
	assert.InDelta(t, 2, sigma, 1e-12)

	raw, sigma = applyModel(artifact, ModelQuadratic, features)
	assert.InDelta(t, 17, raw, 1e-12)
	assert.InDelta(t, 3, sigma, 1e-12)
}

func TestPredictDensity_NoWindows(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t, newTestStore(t))

	prediction, err := engine.PredictDensity(t.Context(), PredictRequest{AcousticSurveyID: 1, ARUID: 1, MinCalls: 1, TopSpecies: 5})
	require.NoError(t, err)
	assert.Equal(t, MsgNoPredictionWindows, prediction.Message)
	assert.Empty(t, prediction.ModelUsed)
	assert.Equal(t, uint(1), prediction.AcousticSurveyID)
}

func TestPredictDensity_InvalidArguments(t *testing.T) {
	t.Parallel()
	engine, _ := newTestEngine(t, newTestStore(t))

	_, err := engine.PredictDensity(t.Context(), PredictRequest{Model: "cubic"})
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = engine.PredictDensity(t.Context(), PredictRequest{MinCalls: -1})
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestPredictDensity_Series(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	load(t, store, series())
	engine, _ := newTestEngine(t, store)
	_, err := engine.RebuildWindows(t.Context(), DefaultRebuildOptions())
	require.NoError(t, err)

	t.Run("linear on a known pair", func(t *testing.T) {
		prediction, err := engine.PredictDensity(t.Context(), PredictRequest{
			AcousticSurveyID: 1, ARUID: 1, Model: ModelLinear, MinCalls: 1, TopSpecies: 5,
		})
		require.NoError(t, err)
		assert.Empty(t, prediction.Message)
		assert.Equal(t, ModelLinear, prediction.ModelUsed)
		assert.Equal(t, 3, prediction.TrainingWindowCount)
		assert.InDelta(t, scenarioDensity, prediction.EstimatedDensity, 1e-6)
		assert.LessOrEqual(t, prediction.Interval.Low, prediction.EstimatedDensity)
		assert.GreaterOrEqual(t, prediction.Interval.High, prediction.EstimatedDensity)
		assert.InDelta(t, 1.0/6, prediction.EffortHours, 1e-12)
		assert.InDelta(t, 66, prediction.Features[FeatureCallsPerHour], 1e-9)
		assert.InDelta(t, 11, prediction.Features[FeatureCallsPerAsset], 1e-9)
		assert.InDelta(t, 60, prediction.Features["sp_tui_calls_per_hour"], 1e-9)
	})

	t.Run("best resolves to a model family", func(t *testing.T) {
		prediction, err := engine.PredictDensity(t.Context(), PredictRequest{
			AcousticSurveyID: 3, ARUID: 1, MinCalls: 1, TopSpecies: 5,
		})
		require.NoError(t, err)
		assert.Contains(t, []string{ModelLinear, ModelQuadratic}, prediction.ModelUsed)
		assert.InDelta(t, 2*scenarioDensity, prediction.EstimatedDensity, 1e-3)
	})

	t.Run("pair without recordings", func(t *testing.T) {
		prediction, err := engine.PredictDensity(t.Context(), PredictRequest{
			AcousticSurveyID: 99, ARUID: 1, Model: ModelLinear, MinCalls: 1, TopSpecies: 5,
		})
		require.NoError(t, err)
		assert.InDelta(t, 1.0/12, prediction.EffortHours, 1e-12)
		assert.Zero(t, prediction.Features[FeatureCallsPerHour])
		assert.GreaterOrEqual(t, prediction.EstimatedDensity, 0.0)
		assert.InDelta(t, 0, prediction.EstimatedDensity, 1e-6)
		assert.GreaterOrEqual(t, prediction.Interval.Low, 0.0)
	})
}
