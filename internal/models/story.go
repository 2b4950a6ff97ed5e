package models

import "time"

// Story media types.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Story is a geo-tagged media post visible to nearby users.
type Story struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	MediaURL  string    `db:"media_url" json:"media_url"`
	MediaType string    `db:"media_type" json:"media_type"`
	Latitude  float64   `db:"latitude" json:"latitude"`
	Longitude float64   `db:"longitude" json:"longitude"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoryWithAuthor joins a story with its author's profile for API responses.
type StoryWithAuthor struct {
	Story
	Author *Profile `json:"author,omitempty"`
}
