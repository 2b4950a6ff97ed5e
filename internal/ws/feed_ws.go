package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"snaplink/internal/auth"
	"snaplink/internal/observability"
	"snaplink/internal/repositories"
	"snaplink/internal/topic"
)

// FeedHandler upgrades realtime feed subscriptions. One connection serves one
// topic; clients open one connection per conversation screen.
type FeedHandler struct {
	hub         *Hub
	authService *auth.Service
	groupRepo   repositories.GroupRepository
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(hub *Hub, authService *auth.Service, groupRepo repositories.GroupRepository) *FeedHandler {
	return &FeedHandler{hub: hub, authService: authService, groupRepo: groupRepo}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates, authorizes the topic, upgrades, and registers the
// connection until the peer goes away.
func (h *FeedHandler) Handle(c *gin.Context) {
	topicName := c.Query("topic")
	if topic.Kind(topicName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid topic"})
		return
	}

	ctx, span := otel.Tracer("snaplink/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	session, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	allowed, err := h.authorizeTopic(ctx, topicName, session.UserID)
	if err != nil || !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for topic"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	kind := topic.Kind(topicName)
	traceID := span.SpanContext().TraceID().String()
	info := newConnInfo(c, session.UserID, traceID)
	h.hub.AddClient(topicName, conn, info)

	observability.IncWSActive(kind)
	observability.IncWSEvent(kind, "ws_connect")
	_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(kind, topicName, "ws_connect", info, 0, ""),
	}, observability.EventHeaders(info.RequestID, info.TraceID))

	// Keep connection alive and clean on close.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(topicName, conn)
			observability.DecWSActive(kind)
			observability.IncWSEvent(kind, "ws_disconnect")
			_ = observability.PublishEvent(ctx, wsRoutingKey(kind), observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(kind, topicName, "ws_disconnect", info, time.Since(info.ConnectedAt).Milliseconds(), closeReason),
			}, observability.EventHeaders(info.RequestID, info.TraceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(kind, "ws_error")
				}
				return
			}
		}
	}()
}

// authorizeTopic enforces that a user only subscribes to conversations they
// take part in, groups they belong to, and their own event stream.
func (h *FeedHandler) authorizeTopic(ctx context.Context, topicName, userID string) (bool, error) {
	switch topic.Kind(topicName) {
	case topic.KindChat:
		a, b, ok := topic.Participants(topicName)
		if !ok {
			return false, nil
		}
		return userID == a || userID == b, nil
	case topic.KindGroup:
		groupID, ok := topic.Resource(topicName)
		if !ok {
			return false, nil
		}
		return h.groupRepo.IsMember(ctx, groupID, userID)
	case topic.KindUser:
		owner, ok := topic.Resource(topicName)
		if !ok {
			return false, nil
		}
		return owner == userID, nil
	default:
		return false, nil
	}
}

func (h *FeedHandler) validateToken(header string) (auth.Session, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.authService.SessionFromToken(parts[1])
	}
	return auth.Session{}, fmt.Errorf("invalid token")
}

func wsEventPayload(kind, topicName, event string, info ConnInfo, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"topic":       topicName,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
