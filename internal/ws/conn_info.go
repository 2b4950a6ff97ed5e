package ws

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConnInfo describes one registered feed connection. The hub keeps it per
// connection so disconnect events can report who was on the topic and for
// how long.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnInfo(c *gin.Context, userID, traceID string) ConnInfo {
	requestID := c.GetHeader("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DeviceID:    c.GetHeader("X-Device-Id"),
		IP:          c.ClientIP(),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}
