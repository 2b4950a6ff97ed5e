package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snaplink/internal/auth"
	"snaplink/internal/telemetry"
)

// AuthHandler exposes sign-up / sign-in / sign-out endpoints.
type AuthHandler struct {
	authService *auth.Service
	audit       *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(authService *auth.Service, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{authService: authService, audit: audit}
}

// SignUp registers a new account.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Username string `json:"username"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, token, err := h.authService.SignUp(c.Request.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrInvalidPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create account"})
		}
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user signed up", requestIDFromContext(c), profile.ID)
	c.JSON(http.StatusCreated, gin.H{"profile": profile, "token": token})
}

// SignIn exchanges credentials for a session token.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, token, err := h.authService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile, "token": token})
}

// SignOut announces the end of the current session.
func (h *AuthHandler) SignOut(c *gin.Context) {
	userID := userIDFromContext(c)
	h.authService.SignOut(auth.Session{UserID: userID})
	h.audit.Emit(c.Request.Context(), "INFO", "user signed out", requestIDFromContext(c), userID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
