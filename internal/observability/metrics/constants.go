// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation labels.
const (
	// OpRebuild is a full calibration window rebuild.
	OpRebuild = "rebuild"
	// OpFeatures builds feature rows from the window set.
	OpFeatures = "features"
	// OpBacktest runs the grouped backtest.
	OpBacktest = "backtest"
	// OpTrain fits both model families on all windows.
	OpTrain = "train"
	// OpPredict predicts density for one acoustic survey and ARU.
	OpPredict = "predict"
	// OpCurve summarises the density to call-rate ratio.
	OpCurve = "curve"
	// OpTransaction represents database transaction operations.
	OpTransaction = "transaction"
	// OpImport loads a survey dataset.
	OpImport = "import"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	// StatusInsufficient marks a run that returned an informational result
	StatusInsufficient = "insufficient_data"
)

// Histogram bucket configuration constants.
const (
	// BucketStart1ms is the starting bucket for 1ms histograms.
	BucketStart1ms = 0.001
	// BucketStart10ms is the starting bucket for 10ms histograms.
	BucketStart10ms = 0.01

	// BucketFactor2 is the common exponential growth factor of 2.
	BucketFactor2 = 2

	// BucketCount12 defines 12 exponential buckets.
	BucketCount12 = 12
	// BucketCount15 defines 15 exponential buckets.
	BucketCount15 = 15
)

// ShutdownTimeout is the timeout for graceful shutdown of the metrics server.
const ShutdownTimeout = 5 * time.Second
