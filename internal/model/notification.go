package model

import (
	"time"
)

// Notification types
const (
	NotificationTypeFollow  = "FOLLOW"
	NotificationTypeLike    = "LIKE"
	NotificationTypeComment = "COMMENT"
	NotificationTypeNewPost = "NEW_POST"
)

// Notification is a single ledger record. Rows are append-mostly: the only
// mutation after insert is the receiver flipping IsRead to true.
type Notification struct {
	ID         int64     `db:"id" json:"id"`
	ReceiverID int64     `db:"receiver_id" json:"-"`
	SenderID   int64     `db:"sender_id" json:"sender_id"`
	Type       string    `db:"type" json:"type"`
	ArtworkID  *int64    `db:"artwork_id" json:"artwork_id,omitempty"`
	IsRead     bool      `db:"is_read" json:"is_read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Joined field for display
	Sender *UserSummary `json:"sender,omitempty"`
}

// NotificationMessage is the payload pushed over the real-time channel:
// the fresh notification plus the receiver's refreshed unread badge count.
type NotificationMessage struct {
	Notification *Notification `json:"notification"`
	UnreadCount  int           `json:"unread_count"`
}

// DefaultNotificationLimit is how many recent notifications a list request
// returns when the caller does not specify one.
const DefaultNotificationLimit = 10
