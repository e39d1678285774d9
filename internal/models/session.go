package models

import "time"

// ParkingSession records who occupies a spot and for how long. The row with
// EndedAt == nil is the user's active session (at most one per user); ended
// rows double as parking history.
type ParkingSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"`
	SpotID          uint       `gorm:"not null;index" json:"spot_id"`
	Latitude        float64    `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude       float64    `gorm:"type:decimal(11,8);not null" json:"longitude"`
	StartedAt       time.Time  `gorm:"not null" json:"started_at"`
	EndedAt         *time.Time `gorm:"index" json:"ended_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	ViaHandshake    bool       `gorm:"default:false" json:"via_handshake"`
	CreatedAt       time.Time  `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ParkingSession) TableName() string {
	return "parking_sessions"
}

func (s *ParkingSession) IsActive() bool { return s.EndedAt == nil }
