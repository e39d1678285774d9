package models

import "time"

// CreditPackage is a purchasable bundle of credits. Checkout is handled by a
// stub provider; packages are listed read-only.
type CreditPackage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:64;not null" json:"name"`
	Credits    int       `gorm:"not null" json:"credits"`
	PriceCents int       `gorm:"not null" json:"price_cents"`
	IsActive   bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (CreditPackage) TableName() string {
	return "credit_packages"
}

type Membership struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Name                string    `gorm:"size:64;not null" json:"name"`
	PriceCents          int       `gorm:"not null" json:"price_cents"`
	CreditsIncluded     int       `gorm:"not null;default:0" json:"credits_included"`
	MonthlyBonusCredits int       `gorm:"not null;default:0" json:"monthly_bonus_credits"`
	IsActive            bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

func (Membership) TableName() string {
	return "memberships"
}

// UserMembership links a user to a membership plan. CreditsIncluded are
// granted once on activation via a membership_bonus transaction.
type UserMembership struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	MembershipID uint       `gorm:"not null;index" json:"membership_id"`
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	StartedAt    time.Time  `gorm:"not null" json:"started_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`

	User       User       `gorm:"foreignKey:UserID" json:"-"`
	Membership Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
}

func (UserMembership) TableName() string {
	return "user_memberships"
}
