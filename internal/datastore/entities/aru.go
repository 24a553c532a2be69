package entities

import "time"

// ARU is an autonomous recording unit at a fixed point.
type ARU struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100"`
	Lat       float64   `gorm:"not null"`
	Lon       float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (ARU) TableName() string {
	return "arus"
}
