package repository

import (
	"context"
	"errors"

	"github.com/databirdlab/densitycal/internal/datastore/entities"
	"gorm.io/gorm"
)

// SurveyRepository provides access to the surveys table.
type SurveyRepository interface {
	// GetByID retrieves a survey by its ID.
	// Returns ErrSurveyNotFound if not found.
	GetByID(ctx context.Context, id uint) (*entities.Survey, error)

	// ListByType returns all surveys of the given type ordered by ID.
	ListByType(ctx context.Context, surveyType entities.SurveyType) ([]*entities.Survey, error)

	// Create inserts a survey and sets its ID.
	Create(ctx context.Context, survey *entities.Survey) error

	// Count returns the total number of surveys.
	Count(ctx context.Context) (int64, error)
}

type surveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository creates a new SurveyRepository.
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepository{db: db}
}

func (r *surveyRepository) GetByID(ctx context.Context, id uint) (*entities.Survey, error) {
	var survey entities.Survey
	err := r.db.WithContext(ctx).Table(tableSurveys).First(&survey, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSurveyNotFound
	}
	if err != nil {
		return nil, dbError(err, "get_survey", "survey_id", id)
	}
	return &survey, nil
}

func (r *surveyRepository) ListByType(ctx context.Context, surveyType entities.SurveyType) ([]*entities.Survey, error) {
	var surveys []*entities.Survey
	err := r.db.WithContext(ctx).Table(tableSurveys).
		Where("type = ?", surveyType).
		Order("id ASC").
		Find(&surveys).Error
	if err != nil {
		return nil, dbError(err, "list_surveys", "type", string(surveyType))
	}
	return surveys, nil
}

func (r *surveyRepository) Create(ctx context.Context, survey *entities.Survey) error {
	if survey == nil || !survey.Type.IsValid() {
		return ErrInvalidInput
	}
	if survey.Status == "" {
		survey.Status = entities.StatusPending
	}
	if err := r.db.WithContext(ctx).Table(tableSurveys).Create(survey).Error; err != nil {
		return dbError(err, "create_survey", "name", survey.Name)
	}
	return nil
}

func (r *surveyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table(tableSurveys).Count(&count).Error; err != nil {
		return 0, dbError(err, "count_surveys")
	}
	return count, nil
}
