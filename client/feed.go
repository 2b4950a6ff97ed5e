package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"snaplink/internal/models"
	"snaplink/internal/topic"
)

// WSFeed opens realtime subscriptions over the service's websocket endpoint.
type WSFeed struct {
	baseURL string
	token   string
	dialer  *websocket.Dialer
}

// NewWSFeed builds a feed for the given service base URL ("http://host:port")
// and bearer token.
func NewWSFeed(baseURL, token string) *WSFeed {
	return &WSFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		dialer:  websocket.DefaultDialer,
	}
}

// Subscribe dials the feed endpoint for one topic and delivers decoded
// messages on a reader goroutine until the subscription closes or the
// connection drops.
func (f *WSFeed) Subscribe(ctx context.Context, topicName string, onMessage func(Message)) (Subscription, error) {
	endpoint := f.wsURL(topicName)
	conn, resp, err := f.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}

	sub := &wsSubscription{conn: conn, done: make(chan struct{})}

	// A server-side drop ends the read loop and closes the subscription.
	go func() {
		readLoop(conn, topic.Kind(topicName), onMessage)
		sub.Close()
	}()

	// Tear the connection down if the caller's context ends first.
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()

	return sub, nil
}

func (f *WSFeed) wsURL(topicName string) string {
	base := f.baseURL
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + base[len("https://"):]
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + base[len("http://"):]
	}
	query := url.Values{}
	query.Set("topic", topicName)
	query.Set("token", f.token)
	return base + "/ws?" + query.Encode()
}

func readLoop(conn *websocket.Conn, kind string, onMessage func(Message)) {
	defer conn.Close()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		switch kind {
		case topic.KindChat:
			var event models.ChatEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				continue
			}
			if event.Type == "message" && event.Message != nil {
				onMessage(fromDirect(*event.Message))
			}
		case topic.KindGroup:
			var event models.GroupEvent
			if err := json.Unmarshal(payload, &event); err != nil {
				continue
			}
			if event.Type == "message" && event.Message != nil {
				onMessage(fromGroup(*event.Message))
			}
		}
	}
}

// wsSubscription closes the underlying connection at most once. Close is
// safe to call repeatedly and after the connection already dropped.
type wsSubscription struct {
	conn *websocket.Conn
	once sync.Once
	done chan struct{}
}

func (s *wsSubscription) Close() error {
	s.once.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		_ = s.conn.Close()
		close(s.done)
	})
	return nil
}
