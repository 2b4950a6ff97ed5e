package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"snaplink/internal/models"
	"snaplink/internal/repositories"
	"snaplink/internal/topic"
	"snaplink/internal/ws"
)

// ContactHandler manages the contact graph and friend discovery.
type ContactHandler struct {
	contactRepo repositories.ContactRepository
	hub         *ws.Hub
}

// NewContactHandler builds a ContactHandler.
func NewContactHandler(contactRepo repositories.ContactRepository, hub *ws.Hub) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo, hub: hub}
}

// ListContacts returns the user's contacts with their profiles.
func (h *ContactHandler) ListContacts(c *gin.Context) {
	contacts, err := h.contactRepo.ListContacts(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contacts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// AddContact inserts a contact relation. Duplicate inserts are benign.
// The new contact's event stream is notified so their screens can refresh.
func (h *ContactHandler) AddContact(c *gin.Context) {
	var req struct {
		ContactID string `json:"contact_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromContext(c)
	if userID == req.ContactID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add yourself"})
		return
	}

	inserted, err := h.contactRepo.AddContact(c.Request.Context(), userID, req.ContactID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add contact"})
		return
	}

	if inserted {
		h.hub.Broadcast(topic.UserEvents(req.ContactID), models.UserEvent{
			Type:      "contact_added",
			UserID:    userID,
			ContactID: req.ContactID,
		})
	}
	c.JSON(http.StatusOK, gin.H{"inserted": inserted})
}

// SearchProfiles finds users by username or email substring.
func (h *ContactHandler) SearchProfiles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, gin.H{"profiles": []models.Profile{}})
		return
	}

	profiles, err := h.contactRepo.SearchProfiles(c.Request.Context(), query, userIDFromContext(c), 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}
