package models

import "time"

// Profile is the public identity record backing auth users.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Username  string    `db:"username" json:"username"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Contact is a directed user -> contact relation.
type Contact struct {
	UserID    string    `db:"user_id" json:"user_id"`
	ContactID string    `db:"contact_id" json:"contact_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
