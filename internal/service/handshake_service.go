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

// HandshakeService coordinates direct spot transfers between a giver and a
// receiver. Every lifecycle move is a conditional update keyed on the deal's
// current status, so concurrent actors race safely: one wins, the rest get
// domain.ErrStaleDeal and refetch.
type HandshakeService struct {
	db       *gorm.DB
	deals    *repository.DealRepository
	spots    *repository.SpotRepository
	sessions *repository.SessionRepository
	credits  *repository.CreditRepository
	feed     ChangeFeed
}

func NewHandshakeService(
	db *gorm.DB,
	deals *repository.DealRepository,
	spots *repository.SpotRepository,
	sessions *repository.SessionRepository,
	credits *repository.CreditRepository,
	feed ChangeFeed,
) *HandshakeService {
	if feed == nil {
		feed = noopFeed{}
	}
	return &HandshakeService{db: db, deals: deals, spots: spots, sessions: sessions, credits: credits, feed: feed}
}

// Offer opens a handshake on the spot the giver currently occupies. The deal
// snapshots the spot's location so it outlives the spot row.
func (s *HandshakeService) Offer(userID, spotID uint, departureTime *time.Time) (*models.HandshakeDeal, error) {
	session, err := s.sessions.GetActiveByUser(userID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.SpotID != spotID {
		return nil, domain.ErrNoActiveSession
	}

	if n, err := s.deals.CountActiveForUser(userID); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, domain.ErrActiveDealExists
	}
	if n, err := s.deals.CountActiveForSpot(spotID); err != nil {
		return nil, err
	} else if n > 0 {
		return nil, domain.ErrActiveDealExists
	}

	deal := &models.HandshakeDeal{
		SpotID:        spotID,
		GiverID:       userID,
		Status:        domain.DealStatusOpen,
		Latitude:      session.Latitude,
		Longitude:     session.Longitude,
		DepartureTime: departureTime,
	}
	if err := s.deals.Create(deal); err != nil {
		return nil, err
	}
	s.feed.Publish(ws.TableDeals, ws.EventInsert, deal)
	return deal, nil
}

// Request asks to take over an open deal. The receiver assignment and the
// status flip happen in one conditional update, so of two simultaneous
// requests exactly one becomes the pending receiver.
func (s *HandshakeService) Request(userID, dealID uint) (*models.HandshakeDeal, error) {
	deal, err := s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if _, ok := domain.NextDealStatus(deal.Status, domain.EventRequest, deal.RoleOf(userID)); !ok {
		if deal.GiverID == userID {
			return nil, domain.ErrNotParticipant
		}
		return nil, domain.ErrStaleDeal
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		deals := s.deals.WithTx(tx)
		if n, err := deals.CountActiveForUser(userID); err != nil {
			return err
		} else if n > 0 {
			return domain.ErrActiveDealExists
		}
		return deals.Transition(dealID, domain.DealStatusOpen, domain.DealStatusPendingApproval,
			map[string]interface{}{"receiver_id": userID})
	})
	if err != nil {
		return nil, err
	}

	deal, err = s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	s.feed.Publish(ws.TableDeals, ws.EventUpdate, deal)
	return deal, nil
}

// Accept approves the pending receiver. Giver only.
func (s *HandshakeService) Accept(userID, dealID uint) (*models.HandshakeDeal, error) {
	return s.giverApproval(userID, dealID, domain.EventAccept)
}

// Decline sends the deal back to open and clears the receiver. Giver only.
func (s *HandshakeService) Decline(userID, dealID uint) (*models.HandshakeDeal, error) {
	return s.giverApproval(userID, dealID, domain.EventDecline)
}

func (s *HandshakeService) giverApproval(userID, dealID uint, event domain.DealEvent) (*models.HandshakeDeal, error) {
	deal, err := s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal.GiverID != userID {
		return nil, domain.ErrNotGiver
	}
	next, ok := domain.NextDealStatus(deal.Status, event, domain.RoleGiver)
	if !ok {
		return nil, domain.ErrStaleDeal
	}
	var extra map[string]interface{}
	if event == domain.EventDecline {
		extra = map[string]interface{}{"receiver_id": nil}
	}
	if err := s.deals.Transition(dealID, deal.Status, next, extra); err != nil {
		return nil, err
	}
	deal, err = s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	s.feed.Publish(ws.TableDeals, ws.EventUpdate, deal)
	return deal, nil
}

// ConfirmResult reports where a confirmation landed.
type ConfirmResult struct {
	Status    string `json:"status"`
	Completed bool   `json:"completed"`
}

// Confirm records one party's confirmation of the physical handover. The
// second confirmation, in either order, triggers settlement: giver +20,
// receiver +10, spot row deleted, and the receiver's implicit session opened,
// all inside one transaction gated by the status compare-and-swap. Retrying a
// completed deal fails the CAS and cannot pay twice.
func (s *HandshakeService) Confirm(userID, dealID uint) (*ConfirmResult, error) {
	deal, err := s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	role := deal.RoleOf(userID)
	if role == domain.RoleOutsider {
		return nil, domain.ErrNotParticipant
	}
	next, ok := domain.NextDealStatus(deal.Status, domain.EventConfirm, role)
	if !ok {
		return nil, domain.ErrStaleDeal
	}

	if next != domain.DealStatusCompleted {
		if err := s.deals.Transition(dealID, deal.Status, next, nil); err != nil {
			return nil, err
		}
		if updated, err := s.deals.GetByID(dealID); err == nil {
			s.feed.Publish(ws.TableDeals, ws.EventUpdate, updated)
		}
		return &ConfirmResult{Status: next, Completed: false}, nil
	}

	if deal.ReceiverID == nil {
		return nil, domain.ErrStaleDeal
	}
	receiverID := *deal.ReceiverID

	now := time.Now()
	var giverBalance, receiverBalance int
	var receiverSession *models.ParkingSession
	err = s.db.Transaction(func(tx *gorm.DB) error {
		// The CAS into completed is the settlement gate: once it commits no
		// retry can match the expected status again.
		if err := s.deals.WithTx(tx).Transition(dealID, deal.Status, domain.DealStatusCompleted, nil); err != nil {
			return err
		}

		credits := s.credits.WithTx(tx)
		gb, err := credits.Credit(deal.GiverID, domain.HandshakeGiverReward, domain.TxHandshakeGiver, "Handshake - spot handed over", &deal.SpotID, &receiverID)
		if err != nil {
			return err
		}
		giverBalance = gb
		rb, err := credits.Credit(receiverID, domain.HandshakeReceiverReward, domain.TxHandshakeReceiver, "Handshake - spot received", &deal.SpotID, &deal.GiverID)
		if err != nil {
			return err
		}
		receiverBalance = rb

		// Ownership transfers without the spot re-entering the pool.
		if err := s.spots.WithTx(tx).Delete(deal.SpotID); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		sessions := s.sessions.WithTx(tx)
		if giverSession, err := sessions.GetActiveBySpot(deal.SpotID); err != nil {
			return err
		} else if giverSession != nil && giverSession.UserID == deal.GiverID {
			if err := sessions.End(giverSession.ID, now); err != nil {
				return err
			}
		}
		receiverSession = &models.ParkingSession{
			UserID:       receiverID,
			SpotID:       deal.SpotID,
			Latitude:     deal.Latitude,
			Longitude:    deal.Longitude,
			StartedAt:    now,
			ViaHandshake: true,
		}
		return sessions.Create(receiverSession)
	})
	if err != nil {
		return nil, err
	}

	s.feed.Publish(ws.TableDeals, ws.EventUpdate, map[string]interface{}{"id": dealID, "status": domain.DealStatusCompleted})
	s.feed.Publish(ws.TableSpots, ws.EventDelete, map[string]interface{}{"id": deal.SpotID})
	s.feed.PublishToUser(deal.GiverID, ws.TableCredits, ws.EventUpdate, map[string]interface{}{"user_id": deal.GiverID, "balance": giverBalance})
	s.feed.PublishToUser(receiverID, ws.TableCredits, ws.EventUpdate, map[string]interface{}{"user_id": receiverID, "balance": receiverBalance})
	s.feed.PublishToUser(receiverID, ws.TableSessions, ws.EventInsert, map[string]interface{}{
		"session":                  receiverSession,
		"default_duration_minutes": domain.HandoverSessionMinutes,
	})
	return &ConfirmResult{Status: domain.DealStatusCompleted, Completed: true}, nil
}

// Cancel aborts a deal from any non-terminal state. Either participant may
// cancel; if the giver still holds the spot it goes back into the pool.
func (s *HandshakeService) Cancel(userID, dealID uint) (*models.HandshakeDeal, error) {
	deal, err := s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	role := deal.RoleOf(userID)
	if role == domain.RoleOutsider {
		return nil, domain.ErrNotParticipant
	}
	if _, ok := domain.NextDealStatus(deal.Status, domain.EventCancel, role); !ok {
		return nil, domain.ErrStaleDeal
	}

	now := time.Now()
	released := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.deals.WithTx(tx).Transition(dealID, deal.Status, domain.DealStatusCancelled, nil); err != nil {
			return err
		}
		r, err := s.releaseGiverSpot(tx, deal, now)
		released = r
		return err
	})
	if err != nil {
		return nil, err
	}

	deal, err = s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	s.feed.Publish(ws.TableDeals, ws.EventUpdate, deal)
	if released {
		s.feed.Publish(ws.TableSpots, ws.EventUpdate, map[string]interface{}{
			"id": deal.SpotID, "available": true, "available_since": now,
		})
	}
	return deal, nil
}

// releaseGiverSpot returns the deal's spot to the pool when it still exists
// and the giver's session is still occupying it.
func (s *HandshakeService) releaseGiverSpot(tx *gorm.DB, deal *models.HandshakeDeal, now time.Time) (bool, error) {
	spots := s.spots.WithTx(tx)
	if _, err := spots.GetByID(deal.SpotID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	sessions := s.sessions.WithTx(tx)
	giverSession, err := sessions.GetActiveBySpot(deal.SpotID)
	if err != nil {
		return false, err
	}
	if giverSession == nil || giverSession.UserID != deal.GiverID {
		return false, nil
	}
	if err := sessions.End(giverSession.ID, now); err != nil {
		return false, err
	}
	if err := spots.Release(deal.SpotID, now); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns a deal if the user is allowed to see it.
func (s *HandshakeService) Get(userID, dealID uint) (*models.HandshakeDeal, error) {
	deal, err := s.deals.GetByID(dealID)
	if err != nil {
		return nil, err
	}
	if deal.Status == domain.DealStatusOpen && deal.GiverID != userID {
		return deal, nil
	}
	if !deal.IsParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	return deal, nil
}

// ListVisible applies the read filter: open offers from other givers plus the
// user's own live deals.
func (s *HandshakeService) ListVisible(userID uint, limit int) ([]models.HandshakeDeal, error) {
	return s.deals.ListVisible(userID, limit)
}

// ActiveDeal returns the user's current non-terminal deal, if any.
func (s *HandshakeService) ActiveDeal(userID uint) (*models.HandshakeDeal, error) {
	return s.deals.GetActiveForUser(userID)
}
