package service

import (
	"context"
	"log"
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/repository"
	"spotshare/internal/ws"
)

// Sweeper reclaims stale availability on a timer: available spots nobody took
// and open handshake offers whose departure time has long passed. Every write
// is conditional, so a run racing a user action loses cleanly and a rerun
// with nothing expired is a no-op.
type Sweeper struct {
	spots    *repository.SpotRepository
	deals    *repository.DealRepository
	sessions *repository.SessionRepository
	feed     ChangeFeed
	loc      *time.Location
	now      func() time.Time
}

func NewSweeper(
	spots *repository.SpotRepository,
	deals *repository.DealRepository,
	sessions *repository.SessionRepository,
	feed ChangeFeed,
) *Sweeper {
	if feed == nil {
		feed = noopFeed{}
	}
	loc, err := time.LoadLocation(domain.SweeperTimezone)
	if err != nil {
		log.Printf("[sweeper] timezone %s unavailable, using UTC: %v", domain.SweeperTimezone, err)
		loc = time.UTC
	}
	return &Sweeper{
		spots:    spots,
		deals:    deals,
		sessions: sessions,
		feed:     feed,
		loc:      loc,
		now:      time.Now,
	}
}

// ThresholdMinutes returns the staleness threshold for the given instant:
// tighter during the day when turnover is fast, looser at night.
func (s *Sweeper) ThresholdMinutes(t time.Time) int {
	hour := t.In(s.loc).Hour()
	if hour >= domain.PeakHourStart && hour < domain.PeakHourEnd {
		return domain.PeakExpiryMinutes
	}
	return domain.OffPeakExpiryMinutes
}

// Run performs one sweep. Returns how many spots were deleted and how many
// open deals were reclaimed.
func (s *Sweeper) Run() (spotsDeleted, dealsCancelled int, err error) {
	now := s.now()
	threshold := s.ThresholdMinutes(now)
	cutoff := now.Add(-time.Duration(threshold) * time.Minute)

	stale, err := s.spots.ListStaleAvailable(cutoff)
	if err != nil {
		return 0, 0, err
	}
	for _, spot := range stale {
		deleted, err := s.spots.DeleteStale(spot.ID, cutoff)
		if err != nil {
			return spotsDeleted, dealsCancelled, err
		}
		if deleted {
			spotsDeleted++
			s.feed.Publish(ws.TableSpots, ws.EventDelete, map[string]interface{}{"id": spot.ID})
		}
	}

	expired, err := s.deals.ListExpiredOpen(cutoff)
	if err != nil {
		return spotsDeleted, dealsCancelled, err
	}
	for _, deal := range expired {
		// The giver never got a taker in time. The conditional update loses
		// to any concurrent request on the deal, which is the right outcome.
		if err := s.deals.Transition(deal.ID, domain.DealStatusOpen, domain.DealStatusCancelled, nil); err != nil {
			if err == domain.ErrStaleDeal {
				continue
			}
			return spotsDeleted, dealsCancelled, err
		}
		dealsCancelled++
		s.feed.Publish(ws.TableDeals, ws.EventUpdate, map[string]interface{}{"id": deal.ID, "status": domain.DealStatusCancelled})

		if err := s.reclaimSpot(deal.SpotID, deal.GiverID, now); err != nil {
			return spotsDeleted, dealsCancelled, err
		}
	}

	if spotsDeleted > 0 || dealsCancelled > 0 {
		log.Printf("[sweeper] threshold=%dmin spots_deleted=%d deals_cancelled=%d", threshold, spotsDeleted, dealsCancelled)
	}
	return spotsDeleted, dealsCancelled, nil
}

// reclaimSpot puts an expired offer's spot back into the pool and closes the
// giver's session on it.
func (s *Sweeper) reclaimSpot(spotID, giverID uint, now time.Time) error {
	if _, err := s.spots.GetByID(spotID); err != nil {
		return nil // spot already gone, nothing to release
	}
	if session, err := s.sessions.GetActiveBySpot(spotID); err == nil && session != nil && session.UserID == giverID {
		if err := s.sessions.End(session.ID, now); err != nil {
			return err
		}
	}
	if err := s.spots.Release(spotID, now); err != nil {
		return err
	}
	s.feed.Publish(ws.TableSpots, ws.EventUpdate, map[string]interface{}{
		"id": spotID, "available": true, "available_since": now,
	})
	return nil
}

// Start runs the sweeper on a fixed cadence until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("[sweeper] running every %s", interval)
	for {
		select {
		case <-ticker.C:
			if _, _, err := s.Run(); err != nil {
				log.Printf("[sweeper] sweep failed: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
