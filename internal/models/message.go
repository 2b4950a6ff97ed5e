package models

import "time"

// Message is a direct message between two users. Content and ImageURL are
// both optional but never both empty for a persisted row.
type Message struct {
	ID          string    `db:"id" json:"id"`
	SenderID    string    `db:"sender_id" json:"sender_id"`
	RecipientID string    `db:"recipient_id" json:"recipient_id"`
	Content     string    `db:"content" json:"content"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// ChatEvent is broadcast over conversation websocket topics.
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}

// UserEvent is broadcast over per-user event topics (contact inserts,
// group membership changes).
type UserEvent struct {
	Type      string `json:"type"`
	UserID    string `json:"user_id,omitempty"`
	ContactID string `json:"contact_id,omitempty"`
	GroupID   string `json:"group_id,omitempty"`
}
