package repository

import "github.com/databirdlab/densitycal/internal/errors"

// Sentinel errors for repository operations.
// Callers distinguish failure modes with errors.Is instead of matching
// GORM-specific errors.
var (
	// ErrSurveyNotFound indicates the requested survey does not exist.
	ErrSurveyNotFound = errors.NewStd("survey not found")

	// ErrARUNotFound indicates the requested ARU does not exist.
	ErrARUNotFound = errors.NewStd("aru not found")

	// ErrAssetNotFound indicates the requested media asset does not exist.
	ErrAssetNotFound = errors.NewStd("media asset not found")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.NewStd("invalid input")
)

// dbError wraps a GORM failure with datastore context.
func dbError(err error, operation string, context ...any) error {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation)

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}

	return builder.Build()
}
