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

// GroupHandler manages group chat endpoints.
type GroupHandler struct {
	groupRepo        repositories.GroupRepository
	groupMessageRepo repositories.GroupMessageRepository
	hub              *ws.Hub
}

// NewGroupHandler builds a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, groupMessageRepo repositories.GroupMessageRepository, hub *ws.Hub) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, groupMessageRepo: groupMessageRepo, hub: hub}
}

// CreateGroup creates a group owned by the caller and optionally seeds members.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name      string   `json:"name" binding:"required"`
		MemberIDs []string `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromContext(c)
	group, err := h.groupRepo.CreateGroup(c.Request.Context(), strings.TrimSpace(req.Name), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	if len(req.MemberIDs) > 0 {
		if err := h.groupRepo.AddMembers(c.Request.Context(), group.ID, req.MemberIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add members"})
			return
		}
		h.notifyMembers(group.ID, req.MemberIDs)
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// ListGroups returns the caller's groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupRepo.ListGroupsForUser(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// AddMembers upserts users into a group. Existing memberships are untouched.
func (h *GroupHandler) AddMembers(c *gin.Context) {
	groupID := c.Param("group_id")

	var req struct {
		UserIDs []string `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userIDFromContext(c))
	if err != nil || !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	if err := h.groupRepo.AddMembers(c.Request.Context(), groupID, req.UserIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add members"})
		return
	}

	h.notifyMembers(groupID, req.UserIDs)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetGroupMessages returns group history, oldest first.
func (h *GroupHandler) GetGroupMessages(c *gin.Context) {
	groupID := c.Param("group_id")
	userID := userIDFromContext(c)

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	msgs, err := h.groupMessageRepo.ListGroupMessages(c.Request.Context(), groupID, historyLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.GroupMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostGroupMessage persists a group message and echoes it to the group topic.
func (h *GroupHandler) PostGroupMessage(c *gin.Context) {
	groupID := c.Param("group_id")
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

	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	msg, err := h.groupMessageRepo.CreateGroupMessage(c.Request.Context(), groupID, userID, req.Content, req.ImageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
		return
	}

	observability.IncMessage("group")
	h.hub.Broadcast(topic.Group(groupID), models.GroupEvent{Type: "message", Message: &msg})

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GetGroup returns group metadata and members.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID := c.Param("group_id")

	group, err := h.groupRepo.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		if errors.Is(err, repositories.ErrGroupNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load group"})
		return
	}

	members, err := h.groupRepo.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group, "members": members})
}

func (h *GroupHandler) notifyMembers(groupID string, userIDs []string) {
	for _, userID := range userIDs {
		h.hub.Broadcast(topic.UserEvents(userID), models.UserEvent{
			Type:    "member_added",
			UserID:  userID,
			GroupID: groupID,
		})
	}
}
