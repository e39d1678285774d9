package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"spotshare/internal/domain"
	"spotshare/internal/middleware"
	"spotshare/internal/repository"
	"spotshare/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountHandler struct {
	users    *repository.UserRepository
	credits  *repository.CreditRepository
	sessions *repository.SessionRepository
	cloud    cloudinary.Client
}

func NewAccountHandler(users *repository.UserRepository, credits *repository.CreditRepository, sessions *repository.SessionRepository, cloud cloudinary.Client) *AccountHandler {
	return &AccountHandler{users: users, credits: credits, sessions: sessions, cloud: cloud}
}

func (h *AccountHandler) Me(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.users.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Username    *string `json:"username" binding:"omitempty,min=3,max=64"`
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.users.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Username != nil && *req.Username != u.Username {
		existing, err := h.users.GetByUsername(*req.Username)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, err)
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		u.Username = *req.Username
	}
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if err := h.users.Update(u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// UploadAvatar accepts a multipart image and stores it in Cloudinary.
func (h *AccountHandler) UploadAvatar(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads not configured"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	folder := "spotshare/avatars/" + strconv.FormatUint(uint64(userID), 10)
	publicID := "avatar_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer f.Close()

	url, thumb, err := h.cloud.UploadImage(c.Request.Context(), f, folder, publicID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
		return
	}
	u, err := h.users.GetByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	u.AvatarURL = url
	if err := h.users.Update(u); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "thumbnail_url": thumb})
}

// Stats summarizes a user's activity: credits earned by source, parking count.
func (h *AccountHandler) Stats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	balance, err := h.credits.GetBalance(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	reported, err := h.credits.SumEarnedByKinds(userID, []string{domain.TxSpotReported})
	if err != nil {
		respondError(c, err)
		return
	}
	handshakes, err := h.credits.SumEarnedByKinds(userID, []string{domain.TxHandshakeGiver, domain.TxHandshakeReceiver})
	if err != nil {
		respondError(c, err)
		return
	}
	parkCount, err := h.sessions.CountByUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"balance":                 balance,
		"credits_from_reports":    reported,
		"credits_from_handshakes": handshakes,
		"spots_reported":          reported / domain.SpotReportReward,
		"parking_sessions_total":  parkCount,
	})
}

// History lists past parking sessions, newest first.
func (h *AccountHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	sessions, err := h.sessions.ListHistory(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}
