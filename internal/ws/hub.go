package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"snaplink/internal/observability"
	"snaplink/internal/topic"
)

// Hub maintains active websocket subscriptions keyed by topic name.
type Hub struct {
	rooms    map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
	logger   zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:    make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
		logger:   logger,
	}
}

// AddClient registers a websocket connection under a topic.
func (h *Hub) AddClient(topicName string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[topicName]; !ok {
		h.rooms[topicName] = make(map[*websocket.Conn]bool)
	}
	h.rooms[topicName][conn] = true
	if _, ok := h.connInfo[topicName]; !ok {
		h.connInfo[topicName] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[topicName][conn] = info
}

// RemoveClient removes a websocket connection from a topic.
func (h *Hub) RemoveClient(topicName string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[topicName]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, topicName)
		}
	}
	if infos, ok := h.connInfo[topicName]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, topicName)
		}
	}
}

// Subscribers reports how many connections are registered on a topic.
func (h *Hub) Subscribers(topicName string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topicName])
}

// Broadcast sends an event to every connection subscribed to the topic.
// Failed connections are closed and dropped.
func (h *Hub) Broadcast(topicName string, event any) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[topicName]))
	for conn := range h.rooms[topicName] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Str("topic", topicName).Msg("marshal broadcast event")
		return
	}

	kind := topic.Kind(topicName)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn().Err(err).Str("topic", topicName).Msg("websocket write failed")
			conn.Close()
			h.RemoveClient(topicName, conn)
			h.publishWSError(kind, topicName, conn, err)
		}
	}
}

func (h *Hub) publishWSError(kind, topicName string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(topicName, conn)
	if !ok {
		return
	}

	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        kind,
			"topic":       topicName,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.EventHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), wsRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent(kind, "ws_error")
}

func (h *Hub) getConnInfo(topicName string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[topicName]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func wsRoutingKey(kind string) string {
	return "ws_events." + kind
}
