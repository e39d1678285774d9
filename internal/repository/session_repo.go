package repository

import (
	"time"

	"spotshare/internal/models"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{db: tx}
}

func (r *SessionRepository) Create(s *models.ParkingSession) error {
	return r.db.Create(s).Error
}

// GetActiveByUser returns the user's open session (ended_at IS NULL), nil if
// the user is not parked anywhere.
func (r *SessionRepository) GetActiveByUser(userID uint) (*models.ParkingSession, error) {
	var s models.ParkingSession
	err := r.db.Where("user_id = ? AND ended_at IS NULL", userID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// GetActiveBySpot returns the open session occupying the spot, nil if none.
func (r *SessionRepository) GetActiveBySpot(spotID uint) (*models.ParkingSession, error) {
	var s models.ParkingSession
	err := r.db.Where("spot_id = ? AND ended_at IS NULL", spotID).First(&s).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// End closes the session and records its duration.
func (r *SessionRepository) End(id uint, now time.Time) error {
	var s models.ParkingSession
	if err := r.db.First(&s, id).Error; err != nil {
		return err
	}
	minutes := int(now.Sub(s.StartedAt).Minutes())
	return r.db.Model(&models.ParkingSession{}).
		Where("id = ? AND ended_at IS NULL", id).
		Updates(map[string]interface{}{"ended_at": now, "duration_minutes": minutes}).Error
}

func (r *SessionRepository) ListHistory(userID uint, limit, offset int) ([]models.ParkingSession, error) {
	var list []models.ParkingSession
	err := r.db.Where("user_id = ? AND ended_at IS NOT NULL", userID).
		Order("started_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// CountByUser returns how many sessions the user has parked in total.
func (r *SessionRepository) CountByUser(userID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.ParkingSession{}).Where("user_id = ?", userID).Count(&c).Error
	return c, err
}
