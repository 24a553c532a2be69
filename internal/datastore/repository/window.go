package repository

import (
	"context"

	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"gorm.io/gorm"
)

// WindowFilter selects calibration windows.
type WindowFilter struct {
	MinCalls int // acoustic_call_count >= MinCalls
	Limit    int // 0 means no limit
}

// WindowRepository provides access to the calibration_windows table.
type WindowRepository interface {
	// DeleteAll removes every window and returns the number deleted.
	DeleteAll(ctx context.Context) (int64, error)

	// CreateBatch inserts windows in batches and sets their IDs.
	CreateBatch(ctx context.Context, windows []*entities.CalibrationWindow) error

	// List returns windows ordered by days_apart ascending, then ID descending.
	List(ctx context.Context, filter WindowFilter) ([]*entities.CalibrationWindow, error)

	// ListForTraining returns windows meeting minCalls ordered by ID.
	ListForTraining(ctx context.Context, minCalls int) ([]*entities.CalibrationWindow, error)

	// Count returns the total number of windows.
	Count(ctx context.Context) (int64, error)
}

type windowRepository struct {
	db *gorm.DB
}

// NewWindowRepository creates a new WindowRepository.
func NewWindowRepository(db *gorm.DB) WindowRepository {
	return &windowRepository{db: db}
}

func (r *windowRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&entities.CalibrationWindow{})
	if result.Error != nil {
		return 0, dbError(result.Error, "delete_windows")
	}
	return result.RowsAffected, nil
}

func (r *windowRepository) CreateBatch(ctx context.Context, windows []*entities.CalibrationWindow) error {
	if len(windows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Table(tableWindows).
		CreateInBatches(windows, createBatchSize).Error
	if err != nil {
		return dbError(err, "create_windows", "count", len(windows))
	}
	return nil
}

func (r *windowRepository) List(ctx context.Context, filter WindowFilter) ([]*entities.CalibrationWindow, error) {
	if filter.Limit < 0 {
		return nil, ErrInvalidInput
	}
	query := r.db.WithContext(ctx).Table(tableWindows).
		Where("acoustic_call_count >= ?", filter.MinCalls).
		Order("days_apart ASC").
		Order("id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var windows []*entities.CalibrationWindow
	if err := query.Find(&windows).Error; err != nil {
		return nil, dbError(err, "list_windows", "min_calls", filter.MinCalls)
	}
	return windows, nil
}

func (r *windowRepository) ListForTraining(ctx context.Context, minCalls int) ([]*entities.CalibrationWindow, error) {
	var windows []*entities.CalibrationWindow
	err := r.db.WithContext(ctx).Table(tableWindows).
		Where("acoustic_call_count >= ?", minCalls).
		Order("id ASC").
		Find(&windows).Error
	if err != nil {
		return nil, dbError(err, "list_training_windows", "min_calls", minCalls)
	}
	return windows, nil
}

func (r *windowRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(tableWindows).Count(&count).Error; err != nil {
		return 0, dbError(err, "count_windows")
	}
	return count, nil
}
