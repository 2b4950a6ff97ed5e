package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snaplink/internal/models"
)

// GroupMessageRepository defines interactions for group messages.
type GroupMessageRepository interface {
	CreateGroupMessage(ctx context.Context, groupID, senderID, content, imageURL string) (models.GroupMessage, error)
	ListGroupMessages(ctx context.Context, groupID string, limit int) ([]models.GroupMessage, error)
}

// GroupMessageRepo is a sqlx-backed repository.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// CreateGroupMessage stores a message in a group.
func (r *GroupMessageRepo) CreateGroupMessage(ctx context.Context, groupID, senderID, content, imageURL string) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO group_messages (id, group_id, sender_id, content, image_url)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, group_id, sender_id, content, image_url, created_at`,
		uuid.NewString(), groupID, senderID, content, imageURL).
		Scan(&msg.ID, &msg.GroupID, &msg.SenderID, &msg.Content, &msg.ImageURL, &msg.CreatedAt)
	return msg, err
}

// ListGroupMessages returns group history, oldest first, capped at limit.
func (r *GroupMessageRepo) ListGroupMessages(ctx context.Context, groupID string, limit int) ([]models.GroupMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := `SELECT id, group_id, sender_id, content, image_url, created_at
        FROM group_messages
        WHERE group_id=$1
        ORDER BY created_at ASC
        LIMIT $2`
	var msgs []models.GroupMessage
	err := r.db.SelectContext(ctx, &msgs, query, groupID, limit)
	return msgs, err
}
