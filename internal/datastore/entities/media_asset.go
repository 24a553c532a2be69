package entities

import "time"

// MediaAsset is one file of a survey. Acoustic assets reference the ARU that
// recorded them; drone assets carry the image footprint.
type MediaAsset struct {
	ID       uint   `gorm:"primaryKey"`
	SurveyID uint   `gorm:"not null;index:idx_asset_survey_aru"`
	ARUID    *uint  `gorm:"column:aru_id;index:idx_asset_survey_aru"`
	FileName string `gorm:"size:255"`

	// Footprint corners; assets missing any corner do not contribute to bounds
	LatTL *float64 `gorm:"column:lat_tl"`
	LonTL *float64 `gorm:"column:lon_tl"`
	LatBR *float64 `gorm:"column:lat_br"`
	LonBR *float64 `gorm:"column:lon_br"`

	Status       ProcessingStatus `gorm:"size:16;not null;default:pending"`
	ErrorMessage *string          `gorm:"type:text"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`

	Survey *Survey `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM.
func (MediaAsset) TableName() string {
	return "media_assets"
}

// HasFootprint reports whether all four corners are set.
func (a *MediaAsset) HasFootprint() bool {
	return a.LatTL != nil && a.LonTL != nil && a.LatBR != nil && a.LonBR != nil
}
