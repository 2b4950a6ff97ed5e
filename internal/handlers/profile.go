package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snaplink/internal/auth"
	"snaplink/internal/repositories"
	"snaplink/internal/telemetry"
)

// ProfileHandler manages profile endpoints.
type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
	authService *auth.Service
	audit       *telemetry.AuditEmitter
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profileRepo repositories.ProfileRepository, authService *auth.Service, audit *telemetry.AuditEmitter) *ProfileHandler {
	return &ProfileHandler{profileRepo: profileRepo, authService: authService, audit: audit}
}

// GetProfile returns a profile by id.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, err := h.profileRepo.GetProfile(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// DeleteProfile removes the authenticated user's account. Messages, contacts,
// memberships and stories go with it through the cascade. The session is
// signed out once the row is gone.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	userID := userIDFromContext(c)

	if err := h.profileRepo.DeleteProfile(c.Request.Context(), userID); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete account"})
		return
	}

	h.authService.SignOut(auth.Session{UserID: userID})
	h.audit.Emit(c.Request.Context(), "INFO", "account deleted", requestIDFromContext(c), userID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// UpdateProfile updates the authenticated user's mutable fields.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		Username  string `json:"username"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileRepo.UpdateProfile(c.Request.Context(), userIDFromContext(c), req.Username, req.AvatarURL)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
