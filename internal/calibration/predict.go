package calibration

import (
	"context"
	"time"

	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

// intervalZ is the normal quantile of a two-sided 95% interval.
const intervalZ = 1.96

// PredictDensity retrains both model families on every window and predicts
// the density seen by one (acoustic survey, ARU). The estimate and both
// interval ends are clamped at 0. The interval is ±1.96σ of the training
// residuals of the model used.
func (e *Engine) PredictDensity(ctx context.Context, req PredictRequest) (*Prediction, error) {
	if req.Model == "" {
		req.Model = ModelBest
	}
	switch req.Model {
	case ModelBest, ModelLinear, ModelQuadratic:
	default:
		return nil, validationError("model must be best, linear or quadratic, got %q", req.Model)
	}
	if err := validateReadArgs(req.MinCalls, req.TopSpecies); err != nil {
		return nil, err
	}
	start := time.Now()

	var (
		set       *FeatureSet
		target    map[string]float64
		effort    float64
		noWindows bool
	)
	err := e.read(ctx, func(tx datastore.Interface) error {
		var err error
		set, err = buildFeatureSet(ctx, tx, req.MinCalls, req.TopSpecies)
		if err != nil {
			return err
		}
		if len(set.Rows) == 0 {
			noWindows = true
			return nil
		}
		target, effort, err = targetFeatures(ctx, tx, req.AcousticSurveyID, req.ARUID, set.SpeciesFeatures)
		return err
	})
	if err != nil {
		e.observe(metrics.OpPredict, start, "", err)
		return nil, err
	}

	prediction := &Prediction{AcousticSurveyID: req.AcousticSurveyID, ARUID: req.ARUID}
	if noWindows {
		prediction.Message = MsgNoPredictionWindows
		e.observe(metrics.OpPredict, start, metrics.StatusInsufficient, nil)
		return prediction, nil
	}

	artifact := trainArtifact(set, e.now())
	model := req.Model
	if model == ModelBest {
		model = artifact.Recommended
	}

	raw, sigma := applyModel(artifact, model, target)

	prediction.ModelUsed = model
	prediction.EstimatedDensity, prediction.Interval = clampEstimate(raw, sigma)
	prediction.Features = target
	prediction.EffortHours = effort
	prediction.TrainingWindowCount = artifact.WindowCount

	if e.metrics != nil {
		e.metrics.RecordPrediction(model)
	}
	e.log.Debug("density predicted",
		logger.Uint("acoustic_survey_id", req.AcousticSurveyID),
		logger.Uint("aru_id", req.ARUID),
		logger.String("model", model),
		logger.Float64("raw", raw),
		logger.Float64("sigma", sigma))
	e.observe(metrics.OpPredict, start, metrics.StatusSuccess, nil)
	return prediction, nil
}

// applyModel returns the raw prediction of model for one feature map and the
// model's training residual std-dev.
func applyModel(a *ModelArtifact, model string, features map[string]float64) (raw, sigma float64) {
	x := [][]float64{vector(features, a.FeatureNames)}
	if model == ModelQuadratic {
		raw = PredictQuadratic(a.Quadratic, x)[0]
	} else {
		raw = PredictLinear(a.Linear, x)[0]
	}
	return raw, a.ResidualStd(model)
}

// clampEstimate floors the estimate and both interval ends at 0.
func clampEstimate(raw, sigma float64) (float64, Interval) {
	return max(0, raw), Interval{
		Low:  max(0, raw-intervalZ*sigma),
		High: max(0, raw+intervalZ*sigma),
	}
}

// targetFeatures builds the feature map of a pair that need not be a window.
// Unknown effort falls back to five minutes.
func targetFeatures(ctx context.Context, tx datastore.Interface, surveyID, aruID uint, species []string) (map[string]float64, float64, error) {
	effort, err := effortHours(ctx, tx, surveyID, aruID)
	if err != nil {
		return nil, 0, err
	}
	if effort <= 0 {
		effort = minEffortHours
	}

	counts, _, err := newSpeciesCounter(tx).counts(ctx, surveyID, aruID)
	if err != nil {
		return nil, 0, err
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	assets, err := tx.Assets().CountBySurveyAndARU(ctx, surveyID, aruID)
	if err != nil {
		return nil, 0, err
	}

	features := map[string]float64{
		FeatureCallsPerHour:  float64(total) / effort,
		FeatureCallsPerAsset: safeDiv(float64(total), float64(assets)),
	}
	for _, sp := range species {
		features[FeatureName(sp)] = float64(counts[sp]) / effort
	}
	return features, effort, nil
}
