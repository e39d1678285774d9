package service

import (
	"testing"
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSweeperFixture(t *testing.T) (*fixture, *Sweeper) {
	t.Helper()
	f := newFixture(t)
	s := NewSweeper(f.spots, f.deals, f.sessions, nil)
	return f, s
}

func TestThresholdMinutes_PeakVsOffPeak(t *testing.T) {
	_, s := newSweeperFixture(t)

	noon := time.Date(2026, 3, 10, 12, 0, 0, 0, s.loc)
	assert.Equal(t, domain.PeakExpiryMinutes, s.ThresholdMinutes(noon))

	lateNight := time.Date(2026, 3, 10, 23, 30, 0, 0, s.loc)
	assert.Equal(t, domain.OffPeakExpiryMinutes, s.ThresholdMinutes(lateNight))

	// boundaries: 8:00 is peak, 20:00 is not
	assert.Equal(t, domain.PeakExpiryMinutes, s.ThresholdMinutes(time.Date(2026, 3, 10, 8, 0, 0, 0, s.loc)))
	assert.Equal(t, domain.OffPeakExpiryMinutes, s.ThresholdMinutes(time.Date(2026, 3, 10, 20, 0, 0, 0, s.loc)))
}

func TestSweeper_DeletesStaleSpots(t *testing.T) {
	f, s := newSweeperFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, s.loc)
	s.now = func() time.Time { return now }

	oldSince := now.Add(-45 * time.Minute)
	freshSince := now.Add(-10 * time.Minute)
	stale := &models.ParkingSpot{Latitude: 1, Longitude: 2, Available: true, AvailableSince: &oldSince}
	require.NoError(t, f.spots.Create(stale))
	fresh := &models.ParkingSpot{Latitude: 3, Longitude: 4, Available: true, AvailableSince: &freshSince}
	require.NoError(t, f.spots.Create(fresh))

	deleted, cancelled, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Equal(t, 0, cancelled)

	_, err = f.spots.GetByID(stale.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = f.spots.GetByID(fresh.ID)
	assert.NoError(t, err)
}

func TestSweeper_OffPeakKeepsSpotsLonger(t *testing.T) {
	f, s := newSweeperFixture(t)

	now := time.Date(2026, 3, 10, 23, 0, 0, 0, s.loc)
	s.now = func() time.Time { return now }

	since := now.Add(-45 * time.Minute) // stale by day, fine at night
	spot := &models.ParkingSpot{Latitude: 1, Longitude: 2, Available: true, AvailableSince: &since}
	require.NoError(t, f.spots.Create(spot))

	deleted, _, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	_, err = f.spots.GetByID(spot.ID)
	assert.NoError(t, err)
}

func TestSweeper_CancelsExpiredOpenDeals(t *testing.T) {
	f, s := newSweeperFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, s.loc)
	s.now = func() time.Time { return now }

	// giver parks and promises a departure that never happened
	spot, _, err := f.parking.ReportSpot(giverID, 52.52, 13.405, "")
	require.NoError(t, err)
	departure := now.Add(-time.Hour)
	deal, err := f.handshake.Offer(giverID, spot.ID, &departure)
	require.NoError(t, err)

	deleted, cancelled, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 1, cancelled)

	got, err := f.deals.GetByID(deal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusCancelled, got.Status)

	// the spot went back into the pool and the giver's session ended
	freed, err := f.spots.GetByID(spot.ID)
	require.NoError(t, err)
	assert.True(t, freed.Available)

	session, err := f.parking.ActiveSession(giverID)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSweeper_SkipsDealsWithFutureDeparture(t *testing.T) {
	f, s := newSweeperFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, s.loc)
	s.now = func() time.Time { return now }

	spot, _, err := f.parking.ReportSpot(giverID, 52.52, 13.405, "")
	require.NoError(t, err)
	departure := now.Add(time.Hour)
	deal, err := f.handshake.Offer(giverID, spot.ID, &departure)
	require.NoError(t, err)

	_, cancelled, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)

	got, err := f.deals.GetByID(deal.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusOpen, got.Status)
}

func TestSweeper_RunIsIdempotent(t *testing.T) {
	f, s := newSweeperFixture(t)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, s.loc)
	s.now = func() time.Time { return now }

	since := now.Add(-45 * time.Minute)
	spot := &models.ParkingSpot{Latitude: 1, Longitude: 2, Available: true, AvailableSince: &since}
	require.NoError(t, f.spots.Create(spot))

	deleted, _, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, cancelled, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.Equal(t, 0, cancelled)
}
