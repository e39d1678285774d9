package handler

import (
	"net/http"
	"strconv"
	"time"

	"spotshare/internal/middleware"
	"spotshare/internal/service"

	"github.com/gin-gonic/gin"
)

type DealHandler struct {
	handshakeSvc *service.HandshakeService
}

func NewDealHandler(handshakeSvc *service.HandshakeService) *DealHandler {
	return &DealHandler{handshakeSvc: handshakeSvc}
}

// List returns the deals visible to the caller: open offers from others plus
// their own live deal.
func (h *DealHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	deals, err := h.handshakeSvc.ListVisible(userID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deals": deals})
}

func (h *DealHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	deal, err := h.handshakeSvc.Get(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// Mine returns the caller's current non-terminal deal, if any.
func (h *DealHandler) Mine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	deal, err := h.handshakeSvc.ActiveDeal(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deal": deal})
}

// Offer opens a handshake on the spot the caller currently occupies.
func (h *DealHandler) Offer(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		SpotID        uint       `json:"spot_id" binding:"required"`
		DepartureTime *time.Time `json:"departure_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	deal, err := h.handshakeSvc.Offer(userID, req.SpotID, req.DepartureTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, deal)
}

func (h *DealHandler) Request(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	deal, err := h.handshakeSvc.Request(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *DealHandler) Accept(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	deal, err := h.handshakeSvc.Accept(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

func (h *DealHandler) Decline(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	deal, err := h.handshakeSvc.Decline(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}

// Confirm records one party's confirmation; the second confirmation settles
// the deal.
func (h *DealHandler) Confirm(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	result, err := h.handshakeSvc.Confirm(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DealHandler) Cancel(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	deal, err := h.handshakeSvc.Cancel(userID, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deal)
}
