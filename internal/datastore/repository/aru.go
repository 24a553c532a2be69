package repository

import (
	"context"
	"errors"

	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"gorm.io/gorm"
)

// ARURepository provides access to the arus table.
type ARURepository interface {
	// GetByID retrieves an ARU by its ID.
	// Returns ErrARUNotFound if not found.
	GetByID(ctx context.Context, id uint) (*entities.ARU, error)

	// Create inserts an ARU and sets its ID.
	Create(ctx context.Context, aru *entities.ARU) error
}

type aruRepository struct {
	db *gorm.DB
}

// NewARURepository creates a new ARURepository.
func NewARURepository(db *gorm.DB) ARURepository {
	return &aruRepository{db: db}
}

func (r *aruRepository) GetByID(ctx context.Context, id uint) (*entities.ARU, error) {
	var aru entities.ARU
	err := r.db.WithContext(ctx).Table(tableARUs).First(&aru, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrARUNotFound
	}
	if err != nil {
		return nil, dbError(err, "get_aru", "aru_id", id)
	}
	return &aru, nil
}

func (r *aruRepository) Create(ctx context.Context, aru *entities.ARU) error {
	if aru == nil {
		return ErrInvalidInput
	}
	if err := r.db.WithContext(ctx).Table(tableARUs).Create(aru).Error; err != nil {
		return dbError(err, "create_aru", "name", aru.Name)
	}
	return nil
}
