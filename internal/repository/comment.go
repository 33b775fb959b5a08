package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"artspace/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO comments (artwork_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query, c.ArtworkID, c.UserID, c.Text)
	if err := row.Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, artwork_id, user_id, text, created_at
		FROM comments
		WHERE id = $1
	`

	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, commentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}

	return &c, nil
}

// ListByArtwork returns an artwork's comments oldest first with author info.
func (r *commentRepository) ListByArtwork(ctx context.Context, artworkID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.artwork_id, c.user_id, c.text, c.created_at,
		       u.id AS "author.id", u.username AS "author.username",
		       u.name AS "author.name", u.avatar_url AS "author.avatar_url"
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.artwork_id = $1
		ORDER BY c.created_at ASC
	`

	type commentRow struct {
		ID        int64     `db:"id"`
		ArtworkID int64     `db:"artwork_id"`
		UserID    int64     `db:"user_id"`
		Text      string    `db:"text"`
		CreatedAt time.Time `db:"created_at"`

		AuthorID        int64   `db:"author.id"`
		AuthorUsername  string  `db:"author.username"`
		AuthorName      string  `db:"author.name"`
		AuthorAvatarURL *string `db:"author.avatar_url"`
	}

	var rows []commentRow
	err := r.db.SelectContext(ctx, &rows, query, artworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:        row.ID,
			ArtworkID: row.ArtworkID,
			UserID:    row.UserID,
			Text:      row.Text,
			CreatedAt: row.CreatedAt,
			Author: &model.UserSummary{
				ID:        row.AuthorID,
				Username:  row.AuthorUsername,
				Name:      row.AuthorName,
				AvatarURL: row.AuthorAvatarURL,
			},
		}
	}

	return comments, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}

	return nil
}

func (r *commentRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user comments: %w", err)
	}
	return nil
}
