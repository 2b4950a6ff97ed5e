package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"snaplink/internal/models"
	"snaplink/internal/observability"
	"snaplink/internal/repositories"
	"snaplink/internal/topic"
	"snaplink/internal/ws"
)

// ChatHandler manages direct conversation endpoints.
type ChatHandler struct {
	messageRepo repositories.MessageRepository
	profileRepo repositories.ProfileRepository
	hub         *ws.Hub
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(messageRepo repositories.MessageRepository, profileRepo repositories.ProfileRepository, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{messageRepo: messageRepo, profileRepo: profileRepo, hub: hub}
}

// GetConversation returns the message history with one contact, oldest first.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	contactID := c.Param("contact_id")
	userID := userIDFromContext(c)

	msgs, err := h.messageRepo.GetConversation(c.Request.Context(), userID, contactID, historyLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetMessage returns one direct message. Callers only see messages they sent
// or received.
func (h *ChatHandler) GetMessage(c *gin.Context) {
	userID := userIDFromContext(c)

	msg, err := h.messageRepo.GetMessage(c.Request.Context(), c.Param("message_id"))
	if err != nil {
		if errors.Is(err, repositories.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load message"})
		return
	}
	if msg.SenderID != userID && msg.RecipientID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// PostMessage persists a direct message and echoes it to the conversation
// topic. Subscribers on both ends receive the confirmed row.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	contactID := c.Param("contact_id")
	userID := userIDFromContext(c)

	var req struct {
		Content  string `json:"content"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && req.ImageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty message"})
		return
	}
	if userID == contactID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), userID, contactID, req.Content, req.ImageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	observability.IncMessage("chat")
	h.hub.Broadcast(topic.Conversation(userID, contactID), models.ChatEvent{Type: "message", Message: &msg})

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}
