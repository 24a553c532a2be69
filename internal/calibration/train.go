package calibration

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

// trainArtifact fits both model families on every row of set. The
// recommendation uses in-sample RMSE, unlike the cross-validated one of
// BacktestReport.
func trainArtifact(set *FeatureSet, trainedAt time.Time) *ModelArtifact {
	xs, y := matrix(set.Rows, set.FeatureNames)

	linear := FitLinear(xs, y)
	quadratic := FitQuadratic(xs, y)
	linearPred := PredictLinear(linear, xs)
	quadPred := PredictQuadratic(quadratic, xs)

	linearMetrics := Evaluate(y, linearPred)
	quadMetrics := Evaluate(y, quadPred)

	return &ModelArtifact{
		ID:               uuid.NewString(),
		TrainedAt:        trainedAt,
		FeatureNames:     set.FeatureNames,
		SpeciesFeatures:  set.SpeciesFeatures,
		Linear:           linear,
		Quadratic:        quadratic,
		LinearMetrics:    linearMetrics,
		QuadraticMetrics: quadMetrics,
		LinearResidStd:   residualStd(y, linearPred),
		QuadResidStd:     residualStd(y, quadPred),
		Recommended:      RecommendModel(linearMetrics, quadMetrics),
		WindowCount:      len(set.Rows),
	}
}

// TrainSummary fits both model families on all windows with at least
// minCalls calls and reports in-sample metrics.
func (e *Engine) TrainSummary(ctx context.Context, minCalls, topSpecies int) (*TrainSummary, error) {
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
	if err != nil {
		e.observe(metrics.OpTrain, start, "", err)
		return nil, err
	}

	summary := e.train(set)
	e.observe(metrics.OpTrain, start, statusFor(summary.Message), nil)
	return summary, nil
}

func (e *Engine) train(set *FeatureSet) *TrainSummary {
	if len(set.Rows) == 0 {
		return &TrainSummary{Message: MsgNoTrainingWindows}
	}

	artifact := trainArtifact(set, e.now())
	if e.metrics != nil {
		e.metrics.RecordModelFit(ModelLinear)
		e.metrics.RecordModelFit(ModelQuadratic)
	}
	e.log.Debug("models trained",
		logger.String("artifact_id", artifact.ID),
		logger.Int("windows", artifact.WindowCount),
		logger.Float64("linear_rmse", artifact.LinearMetrics.RMSE),
		logger.Float64("quadratic_rmse", artifact.QuadraticMetrics.RMSE),
		logger.String("recommended", artifact.Recommended))

	return &TrainSummary{
		WindowCount: artifact.WindowCount,
		Model:       artifact,
		ResidualStd: artifact.ResidualStd(artifact.Recommended),
	}
}
