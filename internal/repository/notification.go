package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"artspace/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Create inserts a new unread ledger row and fills in the generated fields.
func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (receiver_id, sender_id, type, artwork_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, is_read, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, n.ReceiverID, n.SenderID, n.Type, n.ArtworkID)
	if err := row.Scan(&n.ID, &n.IsRead, &n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// ListForReceiver returns the most recent notifications for a receiver,
// newest first, each annotated with sender display info.
func (r *notificationRepository) ListForReceiver(ctx context.Context, receiverID int64, limit int) ([]model.Notification, error) {
	query := `
		SELECT n.id, n.receiver_id, n.sender_id, n.type, n.artwork_id, n.is_read, n.created_at,
		       u.id AS "sender.id", u.username AS "sender.username",
		       u.name AS "sender.name", u.avatar_url AS "sender.avatar_url"
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		WHERE n.receiver_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`

	type notifRow struct {
		ID         int64     `db:"id"`
		ReceiverID int64     `db:"receiver_id"`
		SenderID   int64     `db:"sender_id"`
		Type       string    `db:"type"`
		ArtworkID  *int64    `db:"artwork_id"`
		IsRead     bool      `db:"is_read"`
		CreatedAt  time.Time `db:"created_at"`

		SenderIDJoined  int64   `db:"sender.id"`
		SenderUsername  string  `db:"sender.username"`
		SenderName      string  `db:"sender.name"`
		SenderAvatarURL *string `db:"sender.avatar_url"`
	}

	var rows []notifRow
	err := r.db.SelectContext(ctx, &rows, query, receiverID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	for i, row := range rows {
		notifications[i] = model.Notification{
			ID:         row.ID,
			ReceiverID: row.ReceiverID,
			SenderID:   row.SenderID,
			Type:       row.Type,
			ArtworkID:  row.ArtworkID,
			IsRead:     row.IsRead,
			CreatedAt:  row.CreatedAt,
			Sender: &model.UserSummary{
				ID:        row.SenderIDJoined,
				Username:  row.SenderUsername,
				Name:      row.SenderName,
				AvatarURL: row.SenderAvatarURL,
			},
		}
	}

	return notifications, nil
}

// MarkRead flips is_read only when the row belongs to receiverID. A zero
// row count (wrong owner, unknown id, or already read) is deliberately not
// an error so callers cannot probe for notifications they do not own.
func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, receiverID int64) error {
	query := `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND receiver_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, notificationID, receiverID)
	if err != nil {
		return fmt.Errorf("mark notification as read: %w", err)
	}
	return nil
}

// UnreadCount returns the count of unread notifications.
func (r *notificationRepository) UnreadCount(ctx context.Context, receiverID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE receiver_id = $1 AND is_read = false
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, receiverID)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("get unread count: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE receiver_id = $1 OR sender_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user notifications: %w", err)
	}
	return nil
}
