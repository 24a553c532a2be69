// Package metrics provides the Prometheus collectors of densitycal.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it instead of a concrete collector set so tests can
// pass a fake.
type Recorder interface {
	// RecordOperation records an operation with its status.
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	RecordError(operation, errorType string)
}
