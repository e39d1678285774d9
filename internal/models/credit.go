package models

import "time"

// CreditAccount holds one balance per user. Balances only move through the
// ledger's atomic debit/credit, each of which appends a CreditTransaction in
// the same database transaction. Accounts are never deleted.
type CreditAccount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance   int       `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditAccount) TableName() string {
	return "credit_accounts"
}

// CreditTransaction is the append-only ledger entry. Amount is signed:
// positive = credit, negative = debit.
type CreditTransaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	Amount        int       `gorm:"not null" json:"amount"`
	Kind          string    `gorm:"size:30;not null;index" json:"kind"` // welcome_bonus, parking_used, spot_reported, handshake_giver, handshake_receiver, purchase, membership_bonus
	Description   string    `gorm:"size:255" json:"description"`
	RelatedSpotID *uint     `gorm:"index" json:"related_spot_id"`
	RelatedUserID *uint     `json:"related_user_id"`
	CreatedAt     time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
