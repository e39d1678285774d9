package handler

import (
	"net/http"
	"time"

	"spotshare/internal/middleware"
	"spotshare/internal/service"
	"spotshare/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StoreHandler struct {
	memberships *service.MembershipService
	provider    payment.Provider
}

func NewStoreHandler(memberships *service.MembershipService, provider payment.Provider) *StoreHandler {
	return &StoreHandler{memberships: memberships, provider: provider}
}

func (h *StoreHandler) ListPackages(c *gin.Context) {
	pkgs, err := h.memberships.ListPackages()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": pkgs})
}

func (h *StoreHandler) ListMemberships(c *gin.Context) {
	plans, err := h.memberships.ListPlans()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": plans})
}

func (h *StoreHandler) MyMembership(c *gin.Context) {
	userID := middleware.GetUserID(c)
	um, err := h.memberships.ActiveMembership(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"membership": um})
}

type CheckoutMembershipRequest struct {
	MembershipID uint `json:"membership_id" binding:"required"`
}

// CheckoutMembership starts a checkout with the payment provider, verifies it,
// and activates the plan. The stub provider approves immediately.
func (h *StoreHandler) CheckoutMembership(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req CheckoutMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plans, err := h.memberships.ListPlans()
	if err != nil {
		respondError(c, err)
		return
	}
	var priceCents int
	found := false
	for _, p := range plans {
		if p.ID == req.MembershipID {
			priceCents = p.PriceCents
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "membership not found"})
		return
	}

	ctx := c.Request.Context()
	resp, err := h.provider.InitiateCheckout(ctx, payment.CheckoutRequest{
		UserID:         userID,
		AmountCents:    priceCents,
		Currency:       "EUR",
		IdempotencyKey: uuid.New().String(),
		Description:    "membership activation",
		ExpiresIn:      15 * time.Minute,
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "checkout failed"})
		return
	}
	paid, err := h.provider.VerifyCheckout(ctx, resp.Reference)
	if err != nil || !paid {
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment not completed", "reference": resp.Reference})
		return
	}

	expires := time.Now().AddDate(0, 1, 0)
	um, balance, err := h.memberships.Activate(userID, req.MembershipID, &expires)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"membership": um,
		"balance":    balance,
		"reference":  resp.Reference,
	})
}

// CheckoutPackage is a placeholder until a real payment processor lands.
// Listing works; purchase returns 501 so clients can hide the buy button.
func (h *StoreHandler) CheckoutPackage(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "credit purchase is not available yet"})
}
