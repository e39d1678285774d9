package service

import (
	"testing"

	"spotshare/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportSpot_PaysRewardAndOpensSession(t *testing.T) {
	f := newFixture(t)

	spot, balance, err := f.parking.ReportSpot(1, 52.52, 13.405, "")
	require.NoError(t, err)
	assert.False(t, spot.Available)
	assert.Equal(t, domain.WelcomeBonusCredits+domain.SpotReportReward, balance)

	session, err := f.parking.ActiveSession(1)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, spot.ID, session.SpotID)
	assert.False(t, session.ViaHandshake)
}

func TestReportSpot_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)

	spot1, balance1, err := f.parking.ReportSpot(1, 52.52, 13.405, "token-1")
	require.NoError(t, err)

	spot2, balance2, err := f.parking.ReportSpot(1, 52.52, 13.405, "token-1")
	require.NoError(t, err)
	assert.Equal(t, spot1.ID, spot2.ID)
	assert.Equal(t, balance1, balance2) // no second reward

	n, err := f.sessions.CountByUser(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestReportSpot_RejectedWhileParked(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.parking.ReportSpot(1, 52.52, 13.405, "")
	require.NoError(t, err)

	_, _, err = f.parking.ReportSpot(1, 52.53, 13.41, "")
	assert.ErrorIs(t, err, domain.ErrSessionExists)
}

func TestClaimSpot_TakesAvailableSpot(t *testing.T) {
	f := newFixture(t)

	// reporter parks, then leaves so the spot becomes available
	spot, _, err := f.parking.ReportSpot(1, 52.52, 13.405, "")
	require.NoError(t, err)
	_, err = f.parking.ReleaseSpot(1, spot.ID)
	require.NoError(t, err)

	session, err := f.parking.ClaimSpot(2, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, spot.ID, session.SpotID)

	got, err := f.spots.GetByID(spot.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)

	// claiming is free
	assert.Equal(t, domain.WelcomeBonusCredits, f.balance(t, 2))
}

func TestClaimSpot_SecondClaimantLoses(t *testing.T) {
	f := newFixture(t)

	spot, _, err := f.parking.ReportSpot(1, 52.52, 13.405, "")
	require.NoError(t, err)
	_, err = f.parking.ReleaseSpot(1, spot.ID)
	require.NoError(t, err)

	_, err = f.parking.ClaimSpot(2, spot.ID)
	require.NoError(t, err)

	_, err = f.parking.ClaimSpot(3, spot.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyClaimed)

	// loser has no session
	session, err := f.parking.ActiveSession(3)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestReleaseSpot_DebitsFeeAndFreesSpot(t *testing.T) {
	f := newFixture(t)

	spot, _, err := f.parking.ReportSpot(1, 52.52, 13.405, "")
	require.NoError(t, err)

	balance, err := f.parking.ReleaseSpot(1, spot.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.WelcomeBonusCredits+domain.SpotReportReward-domain.ParkingReleaseCost, balance)

	got, err := f.spots.GetByID(spot.ID)
	require.NoError(t, err)
	assert.True(t, got.Available)
	require.NotNil(t, got.AvailableSince)

	session, err := f.parking.ActiveSession(1)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestReleaseSpot_InsufficientCreditsChangesNothing(t *testing.T) {
	f := newFixture(t)

	spot, _, err := f.parking.ReportSpot(1, 52.52, 13.405, "")
	require.NoError(t, err)
	f.drain(t, 1)

	_, err = f.parking.ReleaseSpot(1, spot.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	// still parked, spot still occupied, balance still zero
	session, err := f.parking.ActiveSession(1)
	require.NoError(t, err)
	require.NotNil(t, session)

	got, err := f.spots.GetByID(spot.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)

	assert.Equal(t, 0, f.balance(t, 1))
}

func TestReleaseSpot_WithoutSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.parking.ReleaseSpot(1, 99)
	assert.ErrorIs(t, err, domain.ErrNoActiveSession)
}
