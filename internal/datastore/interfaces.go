package datastore

import (
	"context"

	"github.com/databirdlab/densitycal/internal/datastore/repository"
)

// Interface is what the calibration engine needs from the store.
// Repositories returned inside Transaction share the transaction handle.
type Interface interface {
	Surveys() repository.SurveyRepository
	ARUs() repository.ARURepository
	Assets() repository.AssetRepository
	Detections() repository.DetectionRepository
	Windows() repository.WindowRepository

	// Transaction runs fn in one database transaction. The transaction
	// commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Interface) error) error

	Close() error
}
