package service

import (
	"errors"
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/models"
	"spotshare/internal/repository"
	"spotshare/internal/ws"

	"gorm.io/gorm"
)

// ChangeFeed receives row-level changes for the realtime layer. Publishing
// is fire-and-forget; the services never wait on subscribers.
type ChangeFeed interface {
	Publish(table, event string, row interface{})
	PublishToUser(userID uint, table, event string, row interface{})
}

// noopFeed lets services run without a realtime layer (tests, batch tools).
type noopFeed struct{}

func (noopFeed) Publish(string, string, interface{})              {}
func (noopFeed) PublishToUser(uint, string, string, interface{}) {}

// ParkingService owns spot reporting, claiming and releasing, and the
// server-tracked parking session that records who occupies which spot.
type ParkingService struct {
	db       *gorm.DB
	spots    *repository.SpotRepository
	sessions *repository.SessionRepository
	credits  *repository.CreditRepository
	feed     ChangeFeed
}

func NewParkingService(
	db *gorm.DB,
	spots *repository.SpotRepository,
	sessions *repository.SessionRepository,
	credits *repository.CreditRepository,
	feed ChangeFeed,
) *ParkingService {
	if feed == nil {
		feed = noopFeed{}
	}
	return &ParkingService{db: db, spots: spots, sessions: sessions, credits: credits, feed: feed}
}

// ReportSpot creates a new spot occupied by the reporter and pays the report
// reward in the same transaction. A repeated idempotency key replays the
// original result without creating a duplicate.
func (s *ParkingService) ReportSpot(userID uint, lat, lon float64, idempotencyKey string) (*models.ParkingSpot, int, error) {
	if idempotencyKey != "" {
		existing, err := s.spots.GetByIdempotencyKey(idempotencyKey)
		if err != nil {
			return nil, 0, err
		}
		if existing != nil {
			balance, err := s.credits.GetBalance(userID)
			if err != nil {
				return nil, 0, err
			}
			return existing, balance, nil
		}
	}

	active, err := s.sessions.GetActiveByUser(userID)
	if err != nil {
		return nil, 0, err
	}
	if active != nil {
		return nil, 0, domain.ErrSessionExists
	}

	now := time.Now()
	spot := &models.ParkingSpot{Latitude: lat, Longitude: lon, Available: false}
	if idempotencyKey != "" {
		spot.IdempotencyKey = &idempotencyKey
	}
	var balance int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.spots.WithTx(tx).Create(spot); err != nil {
			return err
		}
		if err := s.sessions.WithTx(tx).Create(&models.ParkingSession{
			UserID:    userID,
			SpotID:    spot.ID,
			Latitude:  lat,
			Longitude: lon,
			StartedAt: now,
		}); err != nil {
			return err
		}
		b, err := s.credits.WithTx(tx).Credit(userID, domain.SpotReportReward, domain.TxSpotReported, "New spot reported", &spot.ID, nil)
		if err != nil {
			return err
		}
		balance = b
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	s.feed.Publish(ws.TableSpots, ws.EventInsert, spot)
	s.feed.PublishToUser(userID, ws.TableCredits, ws.EventUpdate, map[string]interface{}{"user_id": userID, "balance": balance})
	return spot, balance, nil
}

// ClaimSpot takes an available spot. The availability flip is a
// compare-and-swap, so of two racing claimants exactly one succeeds.
func (s *ParkingService) ClaimSpot(userID, spotID uint) (*models.ParkingSession, error) {
	active, err := s.sessions.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, domain.ErrSessionExists
	}

	spot, err := s.spots.GetByID(spotID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.ParkingSession{
		UserID:    userID,
		SpotID:    spot.ID,
		Latitude:  spot.Latitude,
		Longitude: spot.Longitude,
		StartedAt: now,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.spots.WithTx(tx).Claim(spotID); err != nil {
			return err
		}
		return s.sessions.WithTx(tx).Create(session)
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(ws.TableSpots, ws.EventUpdate, map[string]interface{}{"id": spotID, "available": false})
	return session, nil
}

// ReleaseSpot ends the user's parking session and puts the spot back into the
// pool for the 2-credit release fee. On insufficient credits nothing changes:
// the debit's conditional update fails first and aborts the transaction.
// If the spot row no longer exists (it was consumed by a handshake), leaving
// reveals a fresh spot at the session's location instead.
func (s *ParkingService) ReleaseSpot(userID, spotID uint) (int, error) {
	session, err := s.sessions.GetActiveByUser(userID)
	if err != nil {
		return 0, err
	}
	if session == nil || session.SpotID != spotID {
		return 0, domain.ErrNoActiveSession
	}

	now := time.Now()
	var balance int
	var releasedSpot *models.ParkingSpot
	err = s.db.Transaction(func(tx *gorm.DB) error {
		b, err := s.credits.WithTx(tx).Debit(userID, domain.ParkingReleaseCost, domain.TxParkingUsed, "Parking ended", &spotID, nil)
		if err != nil {
			return err
		}
		balance = b

		spots := s.spots.WithTx(tx)
		spot, err := spots.GetByID(spotID)
		switch {
		case err == nil:
			if err := spots.Release(spotID, now); err != nil {
				return err
			}
			spot.Available = true
			spot.AvailableSince = &now
			releasedSpot = spot
		case errors.Is(err, gorm.ErrRecordNotFound):
			releasedSpot = &models.ParkingSpot{
				Latitude:       session.Latitude,
				Longitude:      session.Longitude,
				Available:      true,
				AvailableSince: &now,
			}
			if err := spots.Create(releasedSpot); err != nil {
				return err
			}
		default:
			return err
		}
		return s.sessions.WithTx(tx).End(session.ID, now)
	})
	if err != nil {
		return 0, err
	}

	s.feed.Publish(ws.TableSpots, ws.EventUpdate, releasedSpot)
	s.feed.PublishToUser(userID, ws.TableCredits, ws.EventUpdate, map[string]interface{}{"user_id": userID, "balance": balance})
	return balance, nil
}

// ActiveSession returns the user's current session, nil when not parked.
func (s *ParkingService) ActiveSession(userID uint) (*models.ParkingSession, error) {
	return s.sessions.GetActiveByUser(userID)
}
