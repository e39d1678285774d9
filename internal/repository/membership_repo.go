package repository

import (
	"time"

	"spotshare/internal/models"

	"gorm.io/gorm"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) ListActivePackages() ([]models.CreditPackage, error) {
	var list []models.CreditPackage
	err := r.db.Where("is_active = ?", true).Order("price_cents ASC").Find(&list).Error
	return list, err
}

func (r *MembershipRepository) ListActiveMemberships() ([]models.Membership, error) {
	var list []models.Membership
	err := r.db.Where("is_active = ?", true).Order("price_cents ASC").Find(&list).Error
	return list, err
}

func (r *MembershipRepository) GetMembership(id uint) (*models.Membership, error) {
	var m models.Membership
	err := r.db.First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipRepository) GetActiveForUser(userID uint) (*models.UserMembership, error) {
	var um models.UserMembership
	err := r.db.Preload("Membership").
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&um).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &um, nil
}

func (r *MembershipRepository) Activate(userID, membershipID uint, now time.Time, expiresAt *time.Time) (*models.UserMembership, error) {
	um := &models.UserMembership{
		UserID:       userID,
		MembershipID: membershipID,
		IsActive:     true,
		StartedAt:    now,
		ExpiresAt:    expiresAt,
	}
	if err := r.db.Create(um).Error; err != nil {
		return nil, err
	}
	return um, nil
}
