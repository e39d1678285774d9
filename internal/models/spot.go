package models

import (
	"time"

	"gorm.io/gorm"
)

// ParkingSpot is a reported on-street spot. Available means up for grabs;
// claiming flips the boolean with a compare-and-swap so at most one claimant
// wins. AvailableSince is set when the spot enters the pool and cleared when
// it is taken.
type ParkingSpot struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Latitude       float64        `gorm:"type:decimal(10,8);not null;index:idx_spot_lat_lng" json:"latitude"`
	Longitude      float64        `gorm:"type:decimal(11,8);not null;index:idx_spot_lat_lng" json:"longitude"`
	Available      bool           `gorm:"not null;default:false;index" json:"available"`
	AvailableSince *time.Time     `gorm:"index" json:"available_since"`
	IdempotencyKey *string        `gorm:"uniqueIndex;size:64" json:"-"` // client token so a retried report does not duplicate the spot
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ParkingSpot) TableName() string {
	return "parking_spots"
}
