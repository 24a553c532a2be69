package entities

import "time"

// SurveyType is the modality of a survey.
type SurveyType string

const (
	SurveyTypeAcoustic SurveyType = "acoustic"
	SurveyTypeDrone    SurveyType = "drone"
)

// ProcessingStatus tracks the upstream classification of a survey or asset.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusDone       ProcessingStatus = "done"
	StatusFailed     ProcessingStatus = "failed"
)

// Survey is a monitoring session. Its spatial extent is derived from its assets.
type Survey struct {
	ID           uint             `gorm:"primaryKey"`
	Name         string           `gorm:"size:200"`
	Type         SurveyType       `gorm:"size:16;not null;index"`
	Date         *time.Time       `gorm:"index"` // surveys without a date are never paired
	Status       ProcessingStatus `gorm:"size:16;not null;default:pending"`
	ErrorMessage *string          `gorm:"type:text"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (Survey) TableName() string {
	return "surveys"
}

// IsValid reports whether t is a known survey type.
func (t SurveyType) IsValid() bool {
	return t == SurveyTypeAcoustic || t == SurveyTypeDrone
}

// IsValid reports whether s is a known status.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDone, StatusFailed:
		return true
	}
	return false
}
