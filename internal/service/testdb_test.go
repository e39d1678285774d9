package service

import (
	"testing"

	"spotshare/internal/models"
	"spotshare/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.CreditAccount{},
		&models.CreditTransaction{},
		&models.ParkingSpot{},
		&models.HandshakeDeal{},
		&models.ParkingSession{},
		&models.CreditPackage{},
		&models.Membership{},
		&models.UserMembership{},
	))
	return db
}

type fixture struct {
	db       *gorm.DB
	spots    *repository.SpotRepository
	deals    *repository.DealRepository
	sessions *repository.SessionRepository
	credits  *repository.CreditRepository

	parking   *ParkingService
	handshake *HandshakeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:       db,
		spots:    repository.NewSpotRepository(db),
		deals:    repository.NewDealRepository(db),
		sessions: repository.NewSessionRepository(db),
		credits:  repository.NewCreditRepository(db),
	}
	f.parking = NewParkingService(db, f.spots, f.sessions, f.credits, nil)
	f.handshake = NewHandshakeService(db, f.deals, f.spots, f.sessions, f.credits, nil)
	return f
}

func (f *fixture) balance(t *testing.T, userID uint) int {
	t.Helper()
	b, err := f.credits.GetBalance(userID)
	require.NoError(t, err)
	return b
}

// drain empties the user's account so insufficient-credit paths can be hit.
func (f *fixture) drain(t *testing.T, userID uint) {
	t.Helper()
	b := f.balance(t, userID)
	if b == 0 {
		return
	}
	_, err := f.credits.Debit(userID, b, "test_drain", "drain", nil, nil)
	require.NoError(t, err)
}
