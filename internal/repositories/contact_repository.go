package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"snaplink/internal/models"
)

// ContactRepository abstracts the contact graph.
type ContactRepository interface {
	AddContact(ctx context.Context, userID, contactID string) (bool, error)
	ListContacts(ctx context.Context, userID string) ([]models.Profile, error)
	SearchProfiles(ctx context.Context, query, excludeUserID string, limit int) ([]models.Profile, error)
}

// ContactRepo is a sqlx implementation of ContactRepository.
type ContactRepo struct {
	db *sqlx.DB
}

// NewContactRepo constructs a ContactRepo.
func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// AddContact inserts a user -> contact relation. A duplicate insert is
// benign and reported as inserted=false.
func (r *ContactRepo) AddContact(ctx context.Context, userID, contactID string) (bool, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (user_id, contact_id) VALUES ($1, $2)`, userID, contactID)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListContacts returns the profiles of all of the user's contacts.
func (r *ContactRepo) ListContacts(ctx context.Context, userID string) ([]models.Profile, error) {
	query := `SELECT p.id, p.email, p.username, p.avatar_url, p.created_at
        FROM contacts c
        JOIN profiles p ON p.id = c.contact_id
        WHERE c.user_id=$1
        ORDER BY p.username ASC`
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles, query, userID)
	return profiles, err
}

// SearchProfiles finds profiles by username or email substring, excluding the
// searching user.
func (r *ContactRepo) SearchProfiles(ctx context.Context, query, excludeUserID string, limit int) ([]models.Profile, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	sqlQuery := `SELECT id, email, username, avatar_url, created_at
        FROM profiles
        WHERE (username ILIKE $1 OR email ILIKE $1) AND id <> $2
        LIMIT $3`
	var profiles []models.Profile
	err := r.db.SelectContext(ctx, &profiles, sqlQuery, pattern, excludeUserID, limit)
	return profiles, err
}
