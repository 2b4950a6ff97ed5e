package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snaplink/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// DefaultHistoryLimit caps the historical page fetched for one conversation.
const DefaultHistoryLimit = 100

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, senderID, recipientID, content, imageURL string) (models.Message, error)
	GetConversation(ctx context.Context, userID, contactID string, limit int) ([]models.Message, error)
	GetMessage(ctx context.Context, messageID string) (models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a direct message and returns the persisted row.
func (r *MessageRepo) CreateMessage(ctx context.Context, senderID, recipientID, content, imageURL string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO messages (id, sender_id, recipient_id, content, image_url)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, sender_id, recipient_id, content, image_url, created_at`,
		uuid.NewString(), senderID, recipientID, content, imageURL).
		Scan(&msg.ID, &msg.SenderID, &msg.RecipientID, &msg.Content, &msg.ImageURL, &msg.CreatedAt)
	return msg, err
}

// GetConversation returns messages exchanged between two users in either
// direction, oldest first, capped at limit.
func (r *MessageRepo) GetConversation(ctx context.Context, userID, contactID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := `SELECT id, sender_id, recipient_id, content, image_url, created_at
        FROM messages
        WHERE (sender_id=$1 AND recipient_id=$2) OR (sender_id=$2 AND recipient_id=$1)
        ORDER BY created_at ASC
        LIMIT $3`
	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, query, userID, contactID, limit)
	return msgs, err
}

// GetMessage retrieves a single message.
func (r *MessageRepo) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, sender_id, recipient_id, content, image_url, created_at FROM messages WHERE id=$1`,
		messageID)
	if isNoRows(err) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}
