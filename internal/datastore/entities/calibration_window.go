package entities

import "time"

// CalibrationWindow pairs an (acoustic survey, ARU) with a drone survey that
// is close in time and overlaps the ARU location.
type CalibrationWindow struct {
	ID               uint    `gorm:"primaryKey"`
	AcousticSurveyID uint    `gorm:"not null;index"`
	VisualSurveyID   uint    `gorm:"not null;index"`
	ARUID            uint    `gorm:"column:aru_id;not null;index"`
	DaysApart        int     `gorm:"not null;index"`
	BufferMeters     float64 `gorm:"not null"`

	AcousticCallCount     int     `gorm:"not null;index"`
	AcousticAssetCount    int     `gorm:"not null"`
	AcousticCallsPerAsset float64 `gorm:"not null"`

	DroneDetectionCount    int     `gorm:"not null"`
	DroneAreaHectares      float64 `gorm:"not null"`
	DroneDensityPerHectare float64 `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (CalibrationWindow) TableName() string {
	return "calibration_windows"
}
