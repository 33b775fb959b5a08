package model

import (
	"errors"
	"time"
)

// Comment represents a comment on an artwork.
type Comment struct {
	ID        int64        `db:"id" json:"id"`
	ArtworkID int64        `db:"artwork_id" json:"artwork_id"`
	UserID    int64        `db:"user_id" json:"-"`
	Text      string       `db:"text" json:"text"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	Author    *UserSummary `json:"author,omitempty"` // Joined field
}

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// Comment constraints
const (
	MaxCommentLength = 500
)

// Comment errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("not the owner of this comment")
	ErrTextRequired    = errors.New("comment text is required")
	ErrTextTooLong     = errors.New("comment text too long")
)
