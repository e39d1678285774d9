package repository

import (
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/models"

	"gorm.io/gorm"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) WithTx(tx *gorm.DB) *DealRepository {
	return &DealRepository{db: tx}
}

func (r *DealRepository) Create(deal *models.HandshakeDeal) error {
	return r.db.Create(deal).Error
}

func (r *DealRepository) GetByID(id uint) (*models.HandshakeDeal, error) {
	var d models.HandshakeDeal
	err := r.db.First(&d, id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Transition moves the deal from expectedStatus to next, optionally applying
// extra column changes in the same UPDATE. The WHERE clause on the expected
// status makes the move atomic against other writers; RowsAffected == 0 means
// the deal changed underneath the caller.
func (r *DealRepository) Transition(id uint, expectedStatus, next string, extra map[string]interface{}) error {
	updates := map[string]interface{}{"status": next}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.Model(&models.HandshakeDeal{}).
		Where("id = ? AND status = ?", id, expectedStatus).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStaleDeal
	}
	return nil
}

// CountActiveForUser counts non-terminal deals where the user is giver or
// receiver. Entry condition: at most one.
func (r *DealRepository) CountActiveForUser(userID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.HandshakeDeal{}).
		Where("(giver_id = ? OR receiver_id = ?) AND status IN ?", userID, userID, domain.NonTerminalDealStatuses).
		Count(&c).Error
	return c, err
}

// CountActiveForSpot counts non-terminal deals on the spot. Entry condition:
// at most one per spot.
func (r *DealRepository) CountActiveForSpot(spotID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.HandshakeDeal{}).
		Where("spot_id = ? AND status IN ?", spotID, domain.NonTerminalDealStatuses).
		Count(&c).Error
	return c, err
}

// ListVisible returns the deals the user may see: open offers from other
// givers plus any non-terminal deal the user participates in.
func (r *DealRepository) ListVisible(userID uint, limit int) ([]models.HandshakeDeal, error) {
	var list []models.HandshakeDeal
	err := r.db.Where("status = ? AND giver_id != ?", domain.DealStatusOpen, userID).
		Or("(giver_id = ? OR receiver_id = ?) AND status IN ?", userID, userID, domain.NonTerminalDealStatuses).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// GetActiveForUser returns the user's current non-terminal deal, nil if none.
func (r *DealRepository) GetActiveForUser(userID uint) (*models.HandshakeDeal, error) {
	var d models.HandshakeDeal
	err := r.db.Where("(giver_id = ? OR receiver_id = ?) AND status IN ?", userID, userID, domain.NonTerminalDealStatuses).
		Order("created_at DESC").
		First(&d).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// ListExpiredOpen returns open deals whose promised departure time is older
// than cutoff, offers that never found a taker in time.
func (r *DealRepository) ListExpiredOpen(cutoff time.Time) ([]models.HandshakeDeal, error) {
	var list []models.HandshakeDeal
	err := r.db.Where("status = ? AND departure_time IS NOT NULL AND departure_time < ?", domain.DealStatusOpen, cutoff).
		Find(&list).Error
	return list, err
}
