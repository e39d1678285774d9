package repository

import (
	"testing"
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDeal(t *testing.T, repo *DealRepository, spotID, giverID uint) *models.HandshakeDeal {
	t.Helper()
	d := &models.HandshakeDeal{
		SpotID:    spotID,
		GiverID:   giverID,
		Status:    domain.DealStatusOpen,
		Latitude:  52.52,
		Longitude: 13.405,
	}
	require.NoError(t, repo.Create(d))
	return d
}

func TestDealRepository_TransitionCAS(t *testing.T) {
	db := newTestDB(t)
	repo := NewDealRepository(db)
	d := openDeal(t, repo, 1, 10)

	err := repo.Transition(d.ID, domain.DealStatusOpen, domain.DealStatusPendingApproval,
		map[string]interface{}{"receiver_id": uint(20)})
	require.NoError(t, err)

	// second writer still expecting open loses
	err = repo.Transition(d.ID, domain.DealStatusOpen, domain.DealStatusPendingApproval,
		map[string]interface{}{"receiver_id": uint(30)})
	assert.ErrorIs(t, err, domain.ErrStaleDeal)

	got, err := repo.GetByID(d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusPendingApproval, got.Status)
	require.NotNil(t, got.ReceiverID)
	assert.Equal(t, uint(20), *got.ReceiverID)
}

func TestDealRepository_TransitionClearsReceiver(t *testing.T) {
	db := newTestDB(t)
	repo := NewDealRepository(db)
	d := openDeal(t, repo, 1, 10)

	require.NoError(t, repo.Transition(d.ID, domain.DealStatusOpen, domain.DealStatusPendingApproval,
		map[string]interface{}{"receiver_id": uint(20)}))
	require.NoError(t, repo.Transition(d.ID, domain.DealStatusPendingApproval, domain.DealStatusOpen,
		map[string]interface{}{"receiver_id": nil}))

	got, err := repo.GetByID(d.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DealStatusOpen, got.Status)
	assert.Nil(t, got.ReceiverID)
}

func TestDealRepository_CountActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewDealRepository(db)

	d := openDeal(t, repo, 1, 10)

	n, err := repo.CountActiveForUser(10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountActiveForSpot(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, repo.Transition(d.ID, domain.DealStatusOpen, domain.DealStatusCancelled, nil))

	n, err = repo.CountActiveForUser(10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.CountActiveForSpot(1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestDealRepository_ListVisible(t *testing.T) {
	db := newTestDB(t)
	repo := NewDealRepository(db)

	mine := openDeal(t, repo, 1, 10)
	theirs := openDeal(t, repo, 2, 20)
	cancelled := openDeal(t, repo, 3, 30)
	require.NoError(t, repo.Transition(cancelled.ID, domain.DealStatusOpen, domain.DealStatusCancelled, nil))

	list, err := repo.ListVisible(10, 50)
	require.NoError(t, err)
	ids := make([]uint, 0, len(list))
	for _, d := range list {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, mine.ID)   // own live deal
	assert.Contains(t, ids, theirs.ID) // someone else's open offer
	assert.NotContains(t, ids, cancelled.ID)
}

func TestDealRepository_ListExpiredOpen(t *testing.T) {
	db := newTestDB(t)
	repo := NewDealRepository(db)

	now := time.Now()
	past := now.Add(-2 * time.Hour)
	future := now.Add(time.Hour)

	expired := &models.HandshakeDeal{SpotID: 1, GiverID: 10, Status: domain.DealStatusOpen, DepartureTime: &past}
	require.NoError(t, repo.Create(expired))
	upcoming := &models.HandshakeDeal{SpotID: 2, GiverID: 20, Status: domain.DealStatusOpen, DepartureTime: &future}
	require.NoError(t, repo.Create(upcoming))
	openDeal(t, repo, 3, 30) // no departure time, never expires

	list, err := repo.ListExpiredOpen(now.Add(-30 * time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, expired.ID, list[0].ID)
}
