package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"snaplink/internal/models"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupRepository abstracts group and membership persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, name, ownerID string) (models.Group, error)
	GetGroup(ctx context.Context, groupID string) (models.Group, error)
	AddMembers(ctx context.Context, groupID string, userIDs []string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup inserts a group and immediately adds the creator as owner.
func (r *GroupRepo) CreateGroup(ctx context.Context, name, ownerID string) (models.Group, error) {
	var group models.Group
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO groups (id, name) VALUES ($1, $2) RETURNING id, name, created_at`,
		uuid.NewString(), name).
		Scan(&group.ID, &group.Name, &group.CreatedAt)
	if err != nil {
		return models.Group{}, err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)`,
		group.ID, ownerID, models.RoleOwner)
	if err != nil && !isUniqueViolation(err) {
		return models.Group{}, err
	}
	return group, nil
}

// GetGroup fetches a group by id.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group,
		`SELECT id, name, created_at FROM groups WHERE id=$1`, groupID)
	if isNoRows(err) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// AddMembers upserts several users into a group with the member role.
// Existing memberships keep their current role.
func (r *GroupRepo) AddMembers(ctx context.Context, groupID string, userIDs []string) error {
	for _, userID := range userIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, $3)
             ON CONFLICT (group_id, user_id) DO NOTHING`,
			groupID, userID, models.RoleMember)
		if err != nil {
			return err
		}
	}
	return nil
}

// IsMember checks whether a user belongs to the group.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`,
		groupID, userID)
	return exists, err
}

// ListGroupsForUser returns the groups a user is a member of.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	query := `SELECT g.id, g.name, g.created_at
        FROM group_members m
        JOIN groups g ON g.id = m.group_id
        WHERE m.user_id=$1
        ORDER BY g.created_at DESC`
	var groups []models.Group
	err := r.db.SelectContext(ctx, &groups, query, userID)
	return groups, err
}

// ListMembers returns the memberships of a group.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	query := `SELECT group_id, user_id, role, joined_at
        FROM group_members WHERE group_id=$1 ORDER BY joined_at ASC`
	var members []models.GroupMember
	err := r.db.SelectContext(ctx, &members, query, groupID)
	return members, err
}
