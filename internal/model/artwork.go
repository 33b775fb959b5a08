package model

import (
	"errors"
	"time"
)

// Artwork represents an uploaded piece with its denormalized view fields.
type Artwork struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	ImageKey    string    `db:"image_key" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	// Joined fields (not columns on the artworks table)
	Artist     *UserSummary `json:"artist,omitempty"`
	LikesCount int          `db:"likes_count" json:"likes_count"`
	Liked      bool         `db:"liked" json:"liked"`
}

// EditArtworkRequest carries optional field updates for PUT /artworks/{id}.
// Nil fields are left untouched. Image fields are filled in by the handler
// after a successful upload, not taken from the client body.
type EditArtworkRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"-"`
	ImageKey    *string `json:"-"`
}

// LikeResult is the response for the like toggle endpoint.
type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likes_count"`
}

// Artwork constraints
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 2200
)

// Artwork errors
var (
	ErrArtworkNotFound    = errors.New("artwork not found")
	ErrNotArtworkOwner    = errors.New("not the owner of this artwork")
	ErrTitleRequired      = errors.New("title is required")
	ErrTitleTooLong       = errors.New("title too long")
	ErrImageRequired      = errors.New("image file is required")
	ErrDescriptionTooLong = errors.New("description too long")
)
