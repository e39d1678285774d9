package handler

import (
	"net/http"
	"strconv"

	"spotshare/internal/domain"
	"spotshare/internal/middleware"
	"spotshare/internal/repository"

	"github.com/gin-gonic/gin"
)

type CreditHandler struct {
	creditRepo *repository.CreditRepository
}

func NewCreditHandler(creditRepo *repository.CreditRepository) *CreditHandler {
	return &CreditHandler{creditRepo: creditRepo}
}

// GetBalance returns the caller's balance, creating the account with the
// welcome bonus on first contact.
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.creditRepo.GetBalance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":  balance,
		"can_park": balance >= domain.ParkingReleaseCost,
	})
}

func (h *CreditHandler) ListTransactions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.creditRepo.ListTransactions(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
