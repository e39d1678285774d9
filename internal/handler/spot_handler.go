package handler

import (
	"net/http"
	"strconv"
	"time"

	"spotshare/internal/domain"
	"spotshare/internal/middleware"
	"spotshare/internal/repository"
	"spotshare/internal/service"
	"spotshare/pkg/geo"
	"spotshare/pkg/probability"

	"github.com/gin-gonic/gin"
)

type SpotHandler struct {
	parkingSvc *service.ParkingService
	spotRepo   *repository.SpotRepository
	loc        *time.Location
}

func NewSpotHandler(parkingSvc *service.ParkingService, spotRepo *repository.SpotRepository) *SpotHandler {
	loc, err := time.LoadLocation(domain.SweeperTimezone)
	if err != nil {
		loc = time.UTC
	}
	return &SpotHandler{parkingSvc: parkingSvc, spotRepo: spotRepo, loc: loc}
}

// List returns available spots with their availability confidence score.
// Optional lat/lng/radius_km query params filter to spots near a point.
func (h *SpotHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	spots, err := h.spotRepo.ListAvailable(limit)
	if err != nil {
		respondError(c, err)
		return
	}

	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	radiusKm, _ := strconv.ParseFloat(c.DefaultQuery("radius_km", "5"), 64)
	filterNear := latErr == nil && lngErr == nil

	now := time.Now()
	peak := probability.IsPeak(now, h.loc)
	out := make([]gin.H, 0, len(spots))
	for _, s := range spots {
		if filterNear && geo.HaversineKm(lat, lng, s.Latitude, s.Longitude) > radiusKm {
			continue
		}
		score := 100
		if s.AvailableSince != nil {
			score = probability.Score(*s.AvailableSince, now, peak)
		}
		out = append(out, gin.H{
			"id":                s.ID,
			"latitude":          s.Latitude,
			"longitude":         s.Longitude,
			"available":         s.Available,
			"available_since":   s.AvailableSince,
			"probability":       score,
			"probability_level": probability.Level(score),
		})
	}
	c.JSON(http.StatusOK, gin.H{"spots": out})
}

// Report creates a new spot occupied by the caller and pays the report
// reward. An Idempotency-Key header makes retries safe.
func (h *SpotHandler) Report(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Latitude  float64 `json:"latitude" binding:"required"`
		Longitude float64 `json:"longitude" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	idemKey := c.GetHeader("Idempotency-Key")
	spot, balance, err := h.parkingSvc.ReportSpot(userID, req.Latitude, req.Longitude, idemKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"spot": spot, "balance": balance})
}

// Claim takes an available spot; the loser of a race gets 409.
func (h *SpotHandler) Claim(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	session, err := h.parkingSvc.ClaimSpot(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Release ends the caller's parking session for the 2-credit fee and puts
// the spot back in the pool.
func (h *SpotHandler) Release(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	balance, err := h.parkingSvc.ReleaseSpot(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// MySession returns the caller's active parking session, if any.
func (h *SpotHandler) MySession(c *gin.Context) {
	userID := middleware.GetUserID(c)
	session, err := h.parkingSvc.ActiveSession(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}
