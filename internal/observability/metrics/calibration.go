package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CalibrationMetrics contains Prometheus metrics for the calibration engine.
type CalibrationMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec

	windowsCreated    prometheus.Gauge
	candidatesSkipped prometheus.Gauge
	lastRebuild       prometheus.Gauge

	modelFitsTotal     *prometheus.CounterVec
	backtestRMSE       *prometheus.GaugeVec
	predictionsByModel *prometheus.CounterVec

	collectors []prometheus.Collector
}

// NewCalibrationMetrics creates and registers the calibration collectors.
func NewCalibrationMetrics(registry prometheus.Registerer) (*CalibrationMetrics, error) {
	m := &CalibrationMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *CalibrationMetrics) initMetrics() {
	m.operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibration_operations_total",
			Help: "Total number of calibration operations",
		},
		[]string{"operation", "status"},
	)

	m.operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calibration_operation_duration_seconds",
			Help:    "Time taken by calibration operations",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount15),
		},
		[]string{"operation"},
	)

	m.operationErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibration_operation_errors_total",
			Help: "Total number of failed calibration operations",
		},
		[]string{"operation", "error_type"},
	)

	m.windowsCreated = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calibration_windows_created",
		Help: "Windows created by the last successful rebuild",
	})

	m.candidatesSkipped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calibration_candidates_skipped",
		Help: "Candidates skipped by the last successful rebuild",
	})

	m.lastRebuild = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "calibration_last_rebuild_timestamp_seconds",
		Help: "Unix time of the last successful rebuild",
	})

	m.modelFitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibration_model_fits_total",
			Help: "Total number of model fits by family",
		},
		[]string{"model"},
	)

	m.backtestRMSE = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "calibration_backtest_rmse",
			Help: "Pooled out-of-fold RMSE of the last backtest by model family",
		},
		[]string{"model"},
	)

	m.predictionsByModel = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calibration_predictions_total",
			Help: "Total number of density predictions by model used",
		},
		[]string{"model"},
	)

	m.collectors = []prometheus.Collector{
		m.operationsTotal,
		m.operationDuration,
		m.operationErrors,
		m.windowsCreated,
		m.candidatesSkipped,
		m.lastRebuild,
		m.modelFitsTotal,
		m.backtestRMSE,
		m.predictionsByModel,
	}
}

// Describe implements the Collector interface
func (m *CalibrationMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface
func (m *CalibrationMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation implements Recorder.
func (m *CalibrationMetrics) RecordOperation(operation, status string) {
	m.operationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *CalibrationMetrics) RecordDuration(operation string, seconds float64) {
	m.operationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *CalibrationMetrics) RecordError(operation, errorType string) {
	m.operationErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordRebuild stores the outcome counts of a committed rebuild.
func (m *CalibrationMetrics) RecordRebuild(created, skipped int, unixTime float64) {
	m.windowsCreated.Set(float64(created))
	m.candidatesSkipped.Set(float64(skipped))
	m.lastRebuild.Set(unixTime)
}

// RecordModelFit counts one fit of a model family.
func (m *CalibrationMetrics) RecordModelFit(model string) {
	m.modelFitsTotal.WithLabelValues(model).Inc()
}

// RecordBacktestRMSE stores the pooled RMSE of a model family.
func (m *CalibrationMetrics) RecordBacktestRMSE(model string, rmse float64) {
	m.backtestRMSE.WithLabelValues(model).Set(rmse)
}

// RecordPrediction counts one prediction made with model.
func (m *CalibrationMetrics) RecordPrediction(model string) {
	m.predictionsByModel.WithLabelValues(model).Inc()
}
