package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"artspace/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetSummary(ctx context.Context, id int64) (*model.UserSummary, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	UpdateProfile(ctx context.Context, userID int64, bio *string, avatarURL, avatarKey *string) error
	// ClearAvatar nulls out the avatar reference on the profile row.
	ClearAvatar(ctx context.Context, userID int64) error
	UpdateUsername(ctx context.Context, userID int64, username string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHashed string) error
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	// Delete removes the user row itself. The surrounding cascade (artworks,
	// comments, follows, notifications) is ordered by the service layer inside
	// one transaction.
	Delete(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

type FollowRepository interface {
	// Create inserts the edge; returns false if it already existed.
	Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	// Delete removes the edge; returns model.ErrNotFollowing if absent.
	Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	// GetFollowerIDs returns every user currently following userID. Used to
	// snapshot the NEW_POST recipient set at artwork-creation time.
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	// DeleteAllForUser removes edges in both directions and fixes the
	// counterparties' denormalized counters in the same transaction.
	DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

type ArtworkRepository interface {
	Create(ctx context.Context, artwork *model.Artwork) error
	GetByID(ctx context.Context, artworkID int64) (*model.Artwork, error)
	GetAuthorID(ctx context.Context, artworkID int64) (int64, error)
	// ListAll returns all artworks newest first, annotated with artist info,
	// like count and whether viewerID liked each one.
	ListAll(ctx context.Context, viewerID *int64) ([]model.Artwork, error)
	ListByUser(ctx context.Context, userID int64, viewerID *int64) ([]model.Artwork, error)
	Update(ctx context.Context, artwork *model.Artwork) error
	// Delete removes the artwork; its comments, likes and notification
	// references go with it (FK cascade).
	Delete(ctx context.Context, artworkID int64) error
	// ToggleLike flips viewer membership in the artwork's like set and returns
	// the new state. Membership toggles are idempotent per user, so concurrent
	// toggles never lose updates the way a numeric counter would.
	ToggleLike(ctx context.Context, artworkID, userID int64) (liked bool, likesCount int, err error)
	GetImageKeysByUser(ctx context.Context, userID int64) ([]string, error)
	DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// ListByArtwork returns comments oldest first with author info.
	ListByArtwork(ctx context.Context, artworkID int64) ([]model.Comment, error)
	Delete(ctx context.Context, commentID int64) error
	DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error
}

type NotificationRepository interface {
	// Create inserts an unread ledger row and fills in the generated fields.
	Create(ctx context.Context, n *model.Notification) error
	// ListForReceiver returns the most recent notifications, newest first,
	// each annotated with the sender's display info.
	ListForReceiver(ctx context.Context, receiverID int64, limit int) ([]model.Notification, error)
	// MarkRead flips is_read only when the row belongs to receiverID.
	// Zero rows affected is not an error: foreign or missing ids are a
	// silent no-op so callers cannot probe for other users' notifications.
	MarkRead(ctx context.Context, notificationID, receiverID int64) error
	UnreadCount(ctx context.Context, receiverID int64) (int, error)
	DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error
}
