package handler

import (
	"errors"
	"net/http"

	"spotshare/internal/domain"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// respondError maps domain failures onto HTTP statuses. Concurrency losses
// are conflicts the client resolves by refetching; they are not faults.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientCredits):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrAlreadyClaimed),
		errors.Is(err, domain.ErrStaleDeal),
		errors.Is(err, domain.ErrActiveDealExists),
		errors.Is(err, domain.ErrSessionExists),
		errors.Is(err, domain.ErrNoActiveSession):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotParticipant), errors.Is(err, domain.ErrNotGiver):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
