package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snaplink/internal/models"
)

// StoryRepository abstracts story persistence.
type StoryRepository interface {
	CreateStory(ctx context.Context, story models.Story) (models.Story, error)
	ListRecentStories(ctx context.Context, since time.Time, limit int) ([]models.Story, error)
}

// StoryRepo is a sqlx implementation of StoryRepository.
type StoryRepo struct {
	db *sqlx.DB
}

// NewStoryRepo constructs a StoryRepo.
func NewStoryRepo(db *sqlx.DB) *StoryRepo {
	return &StoryRepo{db: db}
}

// CreateStory inserts a story row.
func (r *StoryRepo) CreateStory(ctx context.Context, story models.Story) (models.Story, error) {
	if story.ID == "" {
		story.ID = uuid.NewString()
	}
	var out models.Story
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO stories (id, user_id, media_url, media_type, latitude, longitude)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id, user_id, media_url, media_type, latitude, longitude, created_at`,
		story.ID, story.UserID, story.MediaURL, story.MediaType, story.Latitude, story.Longitude).
		Scan(&out.ID, &out.UserID, &out.MediaURL, &out.MediaType, &out.Latitude, &out.Longitude, &out.CreatedAt)
	return out, err
}

// ListRecentStories returns stories created after the cutoff, newest first.
// Used as the scan window when no geo index is available.
func (r *StoryRepo) ListRecentStories(ctx context.Context, since time.Time, limit int) ([]models.Story, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query := `SELECT id, user_id, media_url, media_type, latitude, longitude, created_at
        FROM stories
        WHERE created_at > $1
        ORDER BY created_at DESC
        LIMIT $2`
	var stories []models.Story
	err := r.db.SelectContext(ctx, &stories, query, since, limit)
	return stories, err
}
