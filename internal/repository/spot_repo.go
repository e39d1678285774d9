package repository

import (
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/models"

	"gorm.io/gorm"
)

type SpotRepository struct {
	db *gorm.DB
}

func NewSpotRepository(db *gorm.DB) *SpotRepository {
	return &SpotRepository{db: db}
}

func (r *SpotRepository) WithTx(tx *gorm.DB) *SpotRepository {
	return &SpotRepository{db: tx}
}

func (r *SpotRepository) Create(spot *models.ParkingSpot) error {
	return r.db.Create(spot).Error
}

func (r *SpotRepository) GetByID(id uint) (*models.ParkingSpot, error) {
	var s models.ParkingSpot
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByIdempotencyKey returns the spot previously created with the given
// client token, nil when the token is unseen.
func (r *SpotRepository) GetByIdempotencyKey(key string) (*models.ParkingSpot, error) {
	var s models.ParkingSpot
	err := r.db.Where("idempotency_key = ?", key).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Claim flips available true -> false with a compare-and-swap. Of two racing
// claimants exactly one update matches a row; the other gets ErrAlreadyClaimed.
func (r *SpotRepository) Claim(id uint) error {
	res := r.db.Model(&models.ParkingSpot{}).
		Where("id = ? AND available = ?", id, true).
		Updates(map[string]interface{}{"available": false, "available_since": nil})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrAlreadyClaimed
	}
	return nil
}

// Release puts the spot back into the public pool, stamped with now.
func (r *SpotRepository) Release(id uint, now time.Time) error {
	return r.db.Model(&models.ParkingSpot{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"available": true, "available_since": now}).Error
}

// Delete removes the spot row. Used by handshake settlement (ownership moves
// without the spot re-entering the pool) and by the sweeper.
func (r *SpotRepository) Delete(id uint) error {
	return r.db.Delete(&models.ParkingSpot{}, id).Error
}

func (r *SpotRepository) ListAvailable(limit int) ([]models.ParkingSpot, error) {
	var list []models.ParkingSpot
	err := r.db.Where("available = ?", true).
		Order("available_since DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListStaleAvailable returns available spots whose available_since predates
// cutoff. The sweeper fetches them first so it can publish per-row deletions.
func (r *SpotRepository) ListStaleAvailable(cutoff time.Time) ([]models.ParkingSpot, error) {
	var list []models.ParkingSpot
	err := r.db.Where("available = ? AND available_since < ?", true, cutoff).
		Find(&list).Error
	return list, err
}

// DeleteStale deletes the spot only while it is still stale-available, so a
// claim racing the sweeper wins.
func (r *SpotRepository) DeleteStale(id uint, cutoff time.Time) (bool, error) {
	res := r.db.Where("id = ? AND available = ? AND available_since < ?", id, true, cutoff).
		Delete(&models.ParkingSpot{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
