package repository

import (
	"context"

	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"gorm.io/gorm"
)

// AssetRepository provides access to the media_assets table.
type AssetRepository interface {
	// DistinctARUIDs returns the non-null ARU IDs referenced by a survey's
	// assets in ascending order.
	DistinctARUIDs(ctx context.Context, surveyID uint) ([]uint, error)

	// CountBySurveyAndARU counts the assets a survey holds for one ARU.
	CountBySurveyAndARU(ctx context.Context, surveyID, aruID uint) (int64, error)

	// ListBySurvey returns all assets of a survey ordered by ID.
	ListBySurvey(ctx context.Context, surveyID uint) ([]*entities.MediaAsset, error)

	// ListBySurveyAndARU returns the assets of a survey recorded by one ARU.
	ListBySurveyAndARU(ctx context.Context, surveyID, aruID uint) ([]*entities.MediaAsset, error)

	// Create inserts an asset and sets its ID.
	Create(ctx context.Context, asset *entities.MediaAsset) error
}

type assetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new AssetRepository.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) DistinctARUIDs(ctx context.Context, surveyID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Table(tableMediaAssets).
		Where("survey_id = ? AND aru_id IS NOT NULL", surveyID).
		Distinct("aru_id").
		Order("aru_id ASC").
		Pluck("aru_id", &ids).Error
	if err != nil {
		return nil, dbError(err, "distinct_aru_ids", "survey_id", surveyID)
	}
	return ids, nil
}

func (r *assetRepository) CountBySurveyAndARU(ctx context.Context, surveyID, aruID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(tableMediaAssets).
		Where("survey_id = ? AND aru_id = ?", surveyID, aruID).
		Count(&count).Error
	if err != nil {
		return 0, dbError(err, "count_assets", "survey_id", surveyID, "aru_id", aruID)
	}
	return count, nil
}

func (r *assetRepository) ListBySurvey(ctx context.Context, surveyID uint) ([]*entities.MediaAsset, error) {
	var assets []*entities.MediaAsset
	err := r.db.WithContext(ctx).Table(tableMediaAssets).
		Where("survey_id = ?", surveyID).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, dbError(err, "list_assets", "survey_id", surveyID)
	}
	return assets, nil
}

func (r *assetRepository) ListBySurveyAndARU(ctx context.Context, surveyID, aruID uint) ([]*entities.MediaAsset, error) {
	var assets []*entities.MediaAsset
	err := r.db.WithContext(ctx).Table(tableMediaAssets).
		Where("survey_id = ? AND aru_id = ?", surveyID, aruID).
		Order("id ASC").
		Find(&assets).Error
	if err != nil {
		return nil, dbError(err, "list_assets", "survey_id", surveyID, "aru_id", aruID)
	}
	return assets, nil
}

func (r *assetRepository) Create(ctx context.Context, asset *entities.MediaAsset) error {
	if asset == nil || asset.SurveyID == 0 {
		return ErrInvalidInput
	}
	if asset.Status == "" {
		asset.Status = entities.StatusPending
	}
	if err := r.db.WithContext(ctx).Table(tableMediaAssets).Create(asset).Error; err != nil {
		return dbError(err, "create_asset", "survey_id", asset.SurveyID, "file_name", asset.FileName)
	}
	return nil
}
