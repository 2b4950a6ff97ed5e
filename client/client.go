// Package client is the conversation-side SDK: it keeps one screen's view of
// a conversation in sync with the backend, combining a historical page with
// realtime arrivals and reconciling optimistically-sent messages against
// their server echoes.
package client

import (
	"context"
	"time"

	"snaplink/internal/models"
	"snaplink/internal/topic"
)

// Message is the normalized view of a chat message. ConversationID is the
// recipient id for direct messages and the group id for group messages.
type Message struct {
	ID             string    `json:"id"`
	SenderID       string    `json:"sender_id"`
	ConversationID string    `json:"conversation_id"`
	Content        string    `json:"content"`
	MediaURL       string    `json:"media_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// Conversation identifies either a direct conversation (unordered user pair)
// or a group conversation.
type Conversation struct {
	SelfID  string
	PeerID  string // counterpart for direct conversations
	GroupID string // non-empty for group conversations
}

// Direct reports whether this is a two-party conversation.
func (c Conversation) Direct() bool {
	return c.GroupID == ""
}

// ID returns the conversation identity: the counterpart for direct
// conversations, the group id otherwise.
func (c Conversation) ID() string {
	if c.Direct() {
		return c.PeerID
	}
	return c.GroupID
}

// Topic returns the realtime channel name for this conversation. For direct
// conversations it is symmetric in the two participants.
func (c Conversation) Topic() string {
	if c.Direct() {
		return topic.Conversation(c.SelfID, c.PeerID)
	}
	return topic.Group(c.GroupID)
}

// Matches reports whether a delivered message belongs to this conversation.
// Direct messages match in either direction of the pair.
func (c Conversation) Matches(msg Message) bool {
	if c.Direct() {
		return (msg.SenderID == c.SelfID && msg.ConversationID == c.PeerID) ||
			(msg.SenderID == c.PeerID && msg.ConversationID == c.SelfID)
	}
	return msg.ConversationID == c.GroupID
}

// ProfileFetcher loads a user's public profile.
type ProfileFetcher interface {
	Profile(ctx context.Context, userID string) (models.Profile, error)
}

// HistoryFetcher loads the historical page of a conversation.
type HistoryFetcher interface {
	History(ctx context.Context, conv Conversation, limit int) ([]Message, error)
}

// Sender performs the durable write for an outgoing message.
type Sender interface {
	SendMessage(ctx context.Context, conv Conversation, content, mediaURL string) error
}

// Subscription is a live realtime subscription. Close is idempotent and safe
// to call after the underlying connection has already dropped.
type Subscription interface {
	Close() error
}

// Feed opens realtime subscriptions. Delivery happens asynchronously on a
// background goroutine; callers must not assume delivery is synchronous with
// the send that produced the event.
type Feed interface {
	Subscribe(ctx context.Context, topicName string, onMessage func(Message)) (Subscription, error)
}

func fromDirect(m models.Message) Message {
	return Message{
		ID:             m.ID,
		SenderID:       m.SenderID,
		ConversationID: m.RecipientID,
		Content:        m.Content,
		MediaURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt,
	}
}

func fromGroup(m models.GroupMessage) Message {
	return Message{
		ID:             m.ID,
		SenderID:       m.SenderID,
		ConversationID: m.GroupID,
		Content:        m.Content,
		MediaURL:       m.ImageURL,
		CreatedAt:      m.CreatedAt,
	}
}
