package calibration

import (
	"context"
	"slices"
	"time"

	"github.com/databirdlab/densitycal/internal/datastore"
	"github.com/databirdlab/densitycal/internal/logger"
	"github.com/databirdlab/densitycal/internal/observability/metrics"
)

const (
	minBacktestRows   = 3
	minBacktestGroups = 2
)

// BacktestReport runs leave-one-drone-survey-out cross-validation of both
// model families and recommends the one with the lower pooled RMSE.
func (e *Engine) BacktestReport(ctx context.Context, minCalls, topSpecies int) (*BacktestReport, error) {
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
		e.observe(metrics.OpBacktest, start, "", err)
		return nil, err
	}

	report := backtest(set)
	if report.Overall != nil {
		e.log.Info("backtest finished",
			logger.Int("folds", len(report.Folds)),
			logger.Float64("linear_rmse", report.Overall.Linear.RMSE),
			logger.Float64("quadratic_rmse", report.Overall.Quadratic.RMSE),
			logger.String("recommended", report.Overall.RecommendedModel))
		if e.metrics != nil {
			e.metrics.RecordBacktestRMSE(ModelLinear, report.Overall.Linear.RMSE)
			e.metrics.RecordBacktestRMSE(ModelQuadratic, report.Overall.Quadratic.RMSE)
		}
	}
	e.observe(metrics.OpBacktest, start, statusFor(report.Message), nil)
	return report, nil
}

func backtest(set *FeatureSet) *BacktestReport {
	rows := set.Rows
	report := &BacktestReport{
		WindowCount:  len(rows),
		FeatureNames: set.FeatureNames,
		Folds:        []Fold{},
	}
	if len(rows) < minBacktestRows {
		report.Message = MsgBacktestTooFewRows
		return report
	}

	groups := make([]uint, 0, len(rows))
	for _, r := range rows {
		groups = append(groups, r.VisualSurveyID)
	}
	slices.Sort(groups)
	groups = slices.Compact(groups)
	if len(groups) < minBacktestGroups {
		report.Message = MsgBacktestTooFewDrone
		return report
	}
	report.SpeciesFeatures = set.SpeciesFeatures

	var pooledTrue, pooledLinear, pooledQuad []float64
	for _, g := range groups {
		var trainRows, testRows []FeatureRow
		for _, r := range rows {
			if r.VisualSurveyID == g {
				testRows = append(testRows, r)
			} else {
				trainRows = append(trainRows, r)
			}
		}
		if len(trainRows) == 0 || len(testRows) == 0 {
			continue
		}

		xTrain, yTrain := matrix(trainRows, set.FeatureNames)
		xTest, yTest := matrix(testRows, set.FeatureNames)

		linearPred := PredictLinear(FitLinear(xTrain, yTrain), xTest)
		quadPred := PredictQuadratic(FitQuadratic(xTrain, yTrain), xTest)

		pooledTrue = append(pooledTrue, yTest...)
		pooledLinear = append(pooledLinear, linearPred...)
		pooledQuad = append(pooledQuad, quadPred...)

		report.Folds = append(report.Folds, Fold{
			HeldOutVisualSurveyID: g,
			TrainWindows:          len(trainRows),
			TestWindows:           len(testRows),
			LinearMetrics:         Evaluate(yTest, linearPred),
			QuadraticMetrics:      Evaluate(yTest, quadPred),
		})
	}

	linear := Evaluate(pooledTrue, pooledLinear)
	quadratic := Evaluate(pooledTrue, pooledQuad)
	report.Overall = &BacktestOverall{
		Linear:           linear,
		Quadratic:        quadratic,
		RecommendedModel: RecommendModel(linear, quadratic),
	}
	return report
}
