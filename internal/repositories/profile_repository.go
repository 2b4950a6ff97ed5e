package repositories

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"snaplink/internal/models"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository abstracts profile persistence.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (models.Profile, string, error)
	CreateProfile(ctx context.Context, profile models.Profile, passwordHash string) (models.Profile, error)
	UpdateProfile(ctx context.Context, userID, username, avatarURL string) (models.Profile, error)
	DeleteProfile(ctx context.Context, userID string) error
	BulkProfiles(ctx context.Context, userIDs []string) ([]models.Profile, error)
}

// ProfileRepo is a sqlx implementation of ProfileRepository.
type ProfileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo constructs a ProfileRepo.
func NewProfileRepo(db *sqlx.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// GetProfile fetches a profile by id.
func (r *ProfileRepo) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	err := r.db.GetContext(ctx, &p,
		`SELECT id, email, username, avatar_url, created_at FROM profiles WHERE id=$1`, userID)
	if isNoRows(err) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// GetProfileByEmail fetches a profile and its password hash for sign-in.
func (r *ProfileRepo) GetProfileByEmail(ctx context.Context, email string) (models.Profile, string, error) {
	var row struct {
		models.Profile
		PasswordHash string `db:"password_hash"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT id, email, username, avatar_url, password_hash, created_at FROM profiles WHERE email=$1`, email)
	if isNoRows(err) {
		return models.Profile{}, "", ErrProfileNotFound
	}
	return row.Profile, row.PasswordHash, err
}

// CreateProfile inserts a new profile with credentials.
func (r *ProfileRepo) CreateProfile(ctx context.Context, profile models.Profile, passwordHash string) (models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO profiles (id, email, username, avatar_url, password_hash)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, email, username, avatar_url, created_at`,
		profile.ID, profile.Email, profile.Username, profile.AvatarURL, passwordHash).
		Scan(&p.ID, &p.Email, &p.Username, &p.AvatarURL, &p.CreatedAt)
	return p, err
}

// UpdateProfile upserts the mutable profile fields.
func (r *ProfileRepo) UpdateProfile(ctx context.Context, userID, username, avatarURL string) (models.Profile, error) {
	var p models.Profile
	err := r.db.QueryRowxContext(ctx,
		`UPDATE profiles SET username=$2, avatar_url=$3 WHERE id=$1
         RETURNING id, email, username, avatar_url, created_at`,
		userID, username, avatarURL).
		Scan(&p.ID, &p.Email, &p.Username, &p.AvatarURL, &p.CreatedAt)
	if isNoRows(err) {
		return models.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// DeleteProfile removes a profile and, via cascade, its data.
func (r *ProfileRepo) DeleteProfile(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id=$1`, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// BulkProfiles loads several profiles in one query.
func (r *ProfileRepo) BulkProfiles(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT id, email, username, avatar_url, created_at FROM profiles WHERE id IN (?)`, userIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)
	var profiles []models.Profile
	err = r.db.SelectContext(ctx, &profiles, query, args...)
	return profiles, err
}
