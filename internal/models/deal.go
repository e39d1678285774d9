package models

import (
	"time"

	"spotshare/internal/domain"
)

// HandshakeDeal is a direct spot transfer between a giver and a receiver.
// Latitude/Longitude snapshot the spot's location so the deal survives the
// spot row being deleted at settlement.
type HandshakeDeal struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	SpotID        uint       `gorm:"not null;index" json:"spot_id"`
	GiverID       uint       `gorm:"not null;index" json:"giver_id"`
	ReceiverID    *uint      `gorm:"index" json:"receiver_id"`
	Status        string     `gorm:"size:20;not null;index" json:"status"`
	Latitude      float64    `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude     float64    `gorm:"type:decimal(11,8);not null" json:"longitude"`
	DepartureTime *time.Time `gorm:"index" json:"departure_time"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (HandshakeDeal) TableName() string {
	return "handshake_deals"
}

func (d *HandshakeDeal) IsTerminal() bool {
	return domain.IsTerminalDealStatus(d.Status)
}

// RoleOf classifies a user against this deal.
func (d *HandshakeDeal) RoleOf(userID uint) domain.DealRole {
	if userID == d.GiverID {
		return domain.RoleGiver
	}
	if d.ReceiverID != nil && *d.ReceiverID == userID {
		return domain.RoleReceiver
	}
	return domain.RoleOutsider
}

func (d *HandshakeDeal) IsParticipant(userID uint) bool {
	return d.RoleOf(userID) != domain.RoleOutsider
}
