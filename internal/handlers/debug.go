package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"snaplink/internal/telemetry"
	"snaplink/internal/topic"
	"snaplink/internal/ws"
)

// RegisterDebugRoutes wires debug-only endpoints. Disabled outside dev
// environments.
func RegisterDebugRoutes(router *gin.Engine, emitter *telemetry.AuditEmitter, hub *ws.Hub, enabled bool) {
	if !enabled {
		return
	}

	router.GET("/debug/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitter.Emit(c.Request.Context(), "INFO", "audit test", requestIDFromContext(c), userIDFromContext(c))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Pushes a synthetic event to a topic so feed subscriptions can be
	// verified without a second client.
	router.POST("/debug/feed-test", func(c *gin.Context) {
		var req struct {
			Topic string `json:"topic" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "topic is required"})
			return
		}
		if topic.Kind(req.Topic) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic"})
			return
		}
		hub.Broadcast(req.Topic, gin.H{"type": "debug", "topic": req.Topic})
		c.JSON(http.StatusOK, gin.H{"status": "ok", "subscribers": hub.Subscribers(req.Topic)})
	})
}
