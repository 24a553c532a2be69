package repository

import (
	"context"

	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"gorm.io/gorm"
)

// SpeciesCount is the number of acoustic detections of one class.
type SpeciesCount struct {
	ClassName string
	Count     int64
}

// DetectionRepository provides access to the acoustic and visual detection
// tables. Survey and ARU filters are resolved through media_assets.
type DetectionRepository interface {
	// CountAcousticBySurveyAndARU counts acoustic detections on the assets a
	// survey holds for one ARU.
	CountAcousticBySurveyAndARU(ctx context.Context, surveyID, aruID uint) (int64, error)

	// CountVisualBySurvey counts visual detections across a survey's assets.
	CountVisualBySurvey(ctx context.Context, surveyID uint) (int64, error)

	// MaxEndTimes returns the largest detection end time per asset.
	// Assets without detections are absent from the map.
	MaxEndTimes(ctx context.Context, assetIDs []uint) (map[uint]float64, error)

	// SpeciesCounts groups the acoustic detections of a (survey, ARU) by
	// class name, ordered by class name.
	SpeciesCounts(ctx context.Context, surveyID, aruID uint) ([]SpeciesCount, error)

	// CreateAcoustic inserts acoustic detections in batches.
	CreateAcoustic(ctx context.Context, detections []*entities.AcousticDetection) error

	// CreateVisual inserts visual detections in batches.
	CreateVisual(ctx context.Context, detections []*entities.VisualDetection) error
}

type detectionRepository struct {
	db *gorm.DB
}

// NewDetectionRepository creates a new DetectionRepository.
func NewDetectionRepository(db *gorm.DB) DetectionRepository {
	return &detectionRepository{db: db}
}

func (r *detectionRepository) acousticForPair(ctx context.Context, surveyID, aruID uint) *gorm.DB {
	return r.db.WithContext(ctx).Table(tableAcousticDetections).
		Joins("JOIN "+tableMediaAssets+" ON "+tableMediaAssets+".id = "+tableAcousticDetections+".asset_id").
		Where(tableMediaAssets+".survey_id = ? AND "+tableMediaAssets+".aru_id = ?", surveyID, aruID)
}

func (r *detectionRepository) CountAcousticBySurveyAndARU(ctx context.Context, surveyID, aruID uint) (int64, error) {
	var count int64
	if err := r.acousticForPair(ctx, surveyID, aruID).Count(&count).Error; err != nil {
		return 0, dbError(err, "count_acoustic_detections", "survey_id", surveyID, "aru_id", aruID)
	}
	return count, nil
}

func (r *detectionRepository) CountVisualBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table(tableVisualDetections).
		Joins("JOIN "+tableMediaAssets+" ON "+tableMediaAssets+".id = "+tableVisualDetections+".asset_id").
		Where(tableMediaAssets+".survey_id = ?", surveyID).
		Count(&count).Error
	if err != nil {
		return 0, dbError(err, "count_visual_detections", "survey_id", surveyID)
	}
	return count, nil
}

func (r *detectionRepository) MaxEndTimes(ctx context.Context, assetIDs []uint) (map[uint]float64, error) {
	result := make(map[uint]float64, len(assetIDs))
	if len(assetIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		AssetID uint
		MaxEnd  *float64
	}
	err := r.db.WithContext(ctx).Table(tableAcousticDetections).
		Select("asset_id, MAX(end_time) AS max_end").
		Where("asset_id IN ?", assetIDs).
		Group("asset_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "max_end_times", "asset_count", len(assetIDs))
	}

	for _, row := range rows {
		if row.MaxEnd != nil {
			result[row.AssetID] = *row.MaxEnd
		}
	}
	return result, nil
}

func (r *detectionRepository) SpeciesCounts(ctx context.Context, surveyID, aruID uint) ([]SpeciesCount, error) {
	var rows []SpeciesCount
	err := r.acousticForPair(ctx, surveyID, aruID).
		Select(tableAcousticDetections + ".class_name AS class_name, COUNT(" + tableAcousticDetections + ".id) AS count").
		Group(tableAcousticDetections + ".class_name").
		Order(tableAcousticDetections + ".class_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, dbError(err, "species_counts", "survey_id", surveyID, "aru_id", aruID)
	}
	return rows, nil
}

func (r *detectionRepository) CreateAcoustic(ctx context.Context, detections []*entities.AcousticDetection) error {
	if len(detections) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Table(tableAcousticDetections).
		CreateInBatches(detections, createBatchSize).Error
	if err != nil {
		return dbError(err, "create_acoustic_detections", "count", len(detections))
	}
	return nil
}

func (r *detectionRepository) CreateVisual(ctx context.Context, detections []*entities.VisualDetection) error {
	if len(detections) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Table(tableVisualDetections).
		CreateInBatches(detections, createBatchSize).Error
	if err != nil {
		return dbError(err, "create_visual_detections", "count", len(detections))
	}
	return nil
}
