package calibration

import "time"

// Model family names.
const (
	ModelBest      = "best"
	ModelLinear    = "linear"
	ModelQuadratic = "quadratic"
)

// Feature names shared by every feature vector. CallsPerHour must stay first;
// the quadratic model reads column 0.
const (
	FeatureCallsPerHour  = "calls_per_hour"
	FeatureCallsPerAsset = "calls_per_asset"
)

// Informational messages returned instead of errors.
const (
	MsgNoWindowsForCurve   = "No calibration windows available. Rebuild windows first."
	MsgNoPositiveCallRate  = "No windows with positive acoustic call rate to calibrate."
	MsgBacktestTooFewRows  = "Not enough windows for grouped backtest (need >= 3)."
	MsgBacktestTooFewDrone = "Need at least 2 drone surveys for grouped backtest."
	MsgNoTrainingWindows   = "No windows available for training."
	MsgNoPredictionWindows = "No calibration windows available for prediction."

	curveNotes = "Simple calibration factor median(y/x); see train for fitted models."
)

// RebuildOptions are the pairing thresholds of a rebuild.
type RebuildOptions struct {
	MaxDaysApart     int     `yaml:"max_days_apart" json:"max_days_apart"`
	BufferMeters     float64 `yaml:"buffer_meters" json:"buffer_meters"`
	MinAcousticCalls int     `yaml:"min_acoustic_calls" json:"min_acoustic_calls"`
}

// RebuildResult reports a rebuild and echoes its options.
type RebuildResult struct {
	CreatedWindows    int    `yaml:"created_windows" json:"created_windows"`
	SkippedCandidates int    `yaml:"skipped_candidates" json:"skipped_candidates"`
	RunID             string `yaml:"run_id" json:"run_id"`
	RebuildOptions    `yaml:",inline"`
}

// WindowRecord is a calibration window as returned by ListWindows.
type WindowRecord struct {
	ID                     uint      `yaml:"id" json:"id"`
	AcousticSurveyID       uint      `yaml:"acoustic_survey_id" json:"acoustic_survey_id"`
	VisualSurveyID         uint      `yaml:"visual_survey_id" json:"visual_survey_id"`
	ARUID                  uint      `yaml:"aru_id" json:"aru_id"`
	DaysApart              int       `yaml:"days_apart" json:"days_apart"`
	BufferMeters           float64   `yaml:"buffer_meters" json:"buffer_meters"`
	AcousticCallCount      int       `yaml:"acoustic_call_count" json:"acoustic_call_count"`
	AcousticAssetCount     int       `yaml:"acoustic_asset_count" json:"acoustic_asset_count"`
	AcousticCallsPerAsset  float64   `yaml:"acoustic_calls_per_asset" json:"acoustic_calls_per_asset"`
	DroneDetectionCount    int       `yaml:"drone_detection_count" json:"drone_detection_count"`
	DroneAreaHectares      float64   `yaml:"drone_area_hectares" json:"drone_area_hectares"`
	DroneDensityPerHectare float64   `yaml:"drone_density_per_hectare" json:"drone_density_per_hectare"`
	CreatedAt              time.Time `yaml:"created_at" json:"created_at"`
}

// CurvePair is one usable (calls per asset, density) sample.
type CurvePair struct {
	XCallsPerAsset float64 `yaml:"x_calls_per_asset" json:"x_calls_per_asset"`
	YDensityPerHa  float64 `yaml:"y_density_per_ha" json:"y_density_per_ha"`
}

// CurveSummary is the median density to call-rate ratio. Message is set when
// there is nothing to summarise, and MedianRatio is nil only then.
type CurveSummary struct {
	WindowCount int         `yaml:"window_count" json:"window_count"`
	UsableCount int         `yaml:"usable_count" json:"usable_count"`
	MedianRatio *float64    `yaml:"simple_factor_density_per_call_per_asset,omitempty" json:"simple_factor_density_per_call_per_asset,omitempty"`
	Notes       string      `yaml:"notes,omitempty" json:"notes,omitempty"`
	SamplePairs []CurvePair `yaml:"sample_pairs,omitempty" json:"sample_pairs,omitempty"`
	Message     string      `yaml:"message,omitempty" json:"message,omitempty"`
}

// FeatureRow is the feature vector and target of one window.
type FeatureRow struct {
	WindowID         uint               `yaml:"window_id" json:"window_id"`
	AcousticSurveyID uint               `yaml:"acoustic_survey_id" json:"acoustic_survey_id"`
	VisualSurveyID   uint               `yaml:"visual_survey_id" json:"visual_survey_id"`
	ARUID            uint               `yaml:"aru_id" json:"aru_id"`
	DaysApart        int                `yaml:"days_apart" json:"days_apart"`
	TargetDensity    float64            `yaml:"target_density_per_hectare" json:"target_density_per_hectare"`
	EffortHours      float64            `yaml:"effort_hours_estimated" json:"effort_hours_estimated"`
	Features         map[string]float64 `yaml:"features" json:"features"`
}

// FeatureSet is the output of FeatureRows. FeatureNames fixes column order.
type FeatureSet struct {
	Rows            []FeatureRow `yaml:"rows" json:"rows"`
	FeatureNames    []string     `yaml:"feature_names" json:"feature_names"`
	SpeciesFeatures []string     `yaml:"species_features" json:"species_features"`
}

// Metrics are regression errors. R2 is 0 when undefined.
type Metrics struct {
	RMSE float64 `yaml:"rmse" json:"rmse"`
	MAE  float64 `yaml:"mae" json:"mae"`
	R2   float64 `yaml:"r2" json:"r2"`
}

// LinearModel is density = Intercept + sum(Coef[i] * feature[i]).
type LinearModel struct {
	Intercept float64   `yaml:"intercept" json:"intercept"`
	Coef      []float64 `yaml:"coef" json:"coef"`
}

// QuadraticModel is density = A0 + A1*x + A2*x^2 with x = calls per hour.
type QuadraticModel struct {
	A0 float64 `yaml:"a0" json:"a0"`
	A1 float64 `yaml:"a1" json:"a1"`
	A2 float64 `yaml:"a2" json:"a2"`
}

// ModelArtifact is one training run over the full window set. It lives for a
// single call and is not persisted.
type ModelArtifact struct {
	ID               string         `yaml:"id" json:"id"`
	TrainedAt        time.Time      `yaml:"trained_at" json:"trained_at"`
	FeatureNames     []string       `yaml:"feature_names" json:"feature_names"`
	SpeciesFeatures  []string       `yaml:"species_features" json:"species_features"`
	Linear           LinearModel    `yaml:"linear_model" json:"linear_model"`
	Quadratic        QuadraticModel `yaml:"quadratic_model" json:"quadratic_model"`
	LinearMetrics    Metrics        `yaml:"linear_metrics_train" json:"linear_metrics_train"`
	QuadraticMetrics Metrics        `yaml:"quadratic_metrics_train" json:"quadratic_metrics_train"`
	LinearResidStd   float64        `yaml:"linear_residual_std" json:"linear_residual_std"`
	QuadResidStd     float64        `yaml:"quadratic_residual_std" json:"quadratic_residual_std"`
	Recommended      string         `yaml:"recommended_model" json:"recommended_model"`
	WindowCount      int            `yaml:"window_count" json:"window_count"`
}

// ResidualStd returns the training residual std-dev of model.
func (a *ModelArtifact) ResidualStd(model string) float64 {
	if model == ModelQuadratic {
		return a.QuadResidStd
	}
	return a.LinearResidStd
}

// Fold is one held-out drone survey of a backtest.
type Fold struct {
	HeldOutVisualSurveyID uint    `yaml:"held_out_visual_survey_id" json:"held_out_visual_survey_id"`
	TrainWindows          int     `yaml:"train_windows" json:"train_windows"`
	TestWindows           int     `yaml:"test_windows" json:"test_windows"`
	LinearMetrics         Metrics `yaml:"linear_metrics" json:"linear_metrics"`
	QuadraticMetrics      Metrics `yaml:"quadratic_metrics" json:"quadratic_metrics"`
}

// BacktestOverall pools the out-of-fold errors of every fold.
type BacktestOverall struct {
	Linear           Metrics `yaml:"linear" json:"linear"`
	Quadratic        Metrics `yaml:"quadratic" json:"quadratic"`
	RecommendedModel string  `yaml:"recommended_model" json:"recommended_model"`
}

// BacktestReport is the output of BacktestReport. Overall is nil and Message
// set when there are too few rows or drone surveys.
type BacktestReport struct {
	WindowCount     int              `yaml:"window_count" json:"window_count"`
	FeatureNames    []string         `yaml:"feature_names" json:"feature_names"`
	SpeciesFeatures []string         `yaml:"species_features,omitempty" json:"species_features,omitempty"`
	Folds           []Fold           `yaml:"folds" json:"folds"`
	Overall         *BacktestOverall `yaml:"overall,omitempty" json:"overall,omitempty"`
	Message         string           `yaml:"message,omitempty" json:"message,omitempty"`
}

// TrainSummary is the output of TrainSummary. Model is nil and Message set
// when there are no windows.
type TrainSummary struct {
	WindowCount int            `yaml:"window_count" json:"window_count"`
	Model       *ModelArtifact `yaml:"model,omitempty" json:"model,omitempty"`
	// ResidualStd belongs to the recommended model.
	ResidualStd float64 `yaml:"residual_std_density_per_hectare" json:"residual_std_density_per_hectare"`
	Message     string  `yaml:"message,omitempty" json:"message,omitempty"`
}

// PredictRequest selects the pair to predict and the training set.
type PredictRequest struct {
	AcousticSurveyID uint
	ARUID            uint
	Model            string // best, linear or quadratic; empty means best
	MinCalls         int
	TopSpecies       int
}

// Interval is an approximate 95% prediction interval.
type Interval struct {
	Low  float64 `yaml:"low" json:"low"`
	High float64 `yaml:"high" json:"high"`
}

// Prediction is the output of PredictDensity.
type Prediction struct {
	AcousticSurveyID    uint               `yaml:"acoustic_survey_id" json:"acoustic_survey_id"`
	ARUID               uint               `yaml:"aru_id" json:"aru_id"`
	ModelUsed           string             `yaml:"model_used,omitempty" json:"model_used,omitempty"`
	EstimatedDensity    float64            `yaml:"estimated_density_per_hectare" json:"estimated_density_per_hectare"`
	Interval            Interval           `yaml:"prediction_interval_approx" json:"prediction_interval_approx"`
	Features            map[string]float64 `yaml:"features,omitempty" json:"features,omitempty"`
	EffortHours         float64            `yaml:"effort_hours_estimated" json:"effort_hours_estimated"`
	TrainingWindowCount int                `yaml:"training_window_count" json:"training_window_count"`
	Message             string             `yaml:"message,omitempty" json:"message,omitempty"`
}
