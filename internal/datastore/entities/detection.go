package entities

// AcousticDetection is one classified call within an asset. Times are
// seconds from the start of the recording.
type AcousticDetection struct {
	ID         uint    `gorm:"primaryKey"`
	AssetID    uint    `gorm:"not null;index"`
	ClassName  string  `gorm:"size:200;not null;index"`
	StartTime  float64 `gorm:"not null;default:0"`
	EndTime    float64 `gorm:"not null;default:0"`
	Confidence float64 `gorm:"not null;default:0"`

	Asset *MediaAsset `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (AcousticDetection) TableName() string {
	return "acoustic_detections"
}

// VisualDetection is one animal detected in a drone image.
type VisualDetection struct {
	ID         uint    `gorm:"primaryKey"`
	AssetID    uint    `gorm:"not null;index"`
	ClassName  string  `gorm:"size:200;not null"`
	Confidence float64 `gorm:"not null;default:0"`

	Asset *MediaAsset `gorm:"foreignKey:AssetID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (VisualDetection) TableName() string {
	return "visual_detections"
}
