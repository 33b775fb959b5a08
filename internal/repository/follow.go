package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"artspace/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowerIDs returns the ids of every user following userID. The artwork
// service calls this right after an artwork commit so the NEW_POST recipient
// set is the follower set as of creation time.
func (r *followRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `SELECT follower_id FROM follows WHERE followee_id = $1`

	var ids []int64
	err := r.db.SelectContext(ctx, &ids, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get follower ids: %w", err)
	}

	return ids, nil
}

// DeleteAllForUser removes every edge touching userID and keeps the
// counterparties' counters consistent with the shrunken edge set. The counter
// updates must run before the edges are deleted since they derive the set of
// affected users from the edges themselves.
func (r *followRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	// Users who followed the deleted account lose one "following".
	_, err := tx.ExecContext(ctx, `
		UPDATE users u
		SET following_count = following_count - 1
		FROM follows f
		WHERE f.followee_id = $1 AND u.id = f.follower_id
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust following counts: %w", err)
	}

	// Users the deleted account followed lose one follower.
	_, err = tx.ExecContext(ctx, `
		UPDATE users u
		SET follower_count = follower_count - 1
		FROM follows f
		WHERE f.follower_id = $1 AND u.id = f.followee_id
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust follower counts: %w", err)
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM follows WHERE follower_id = $1 OR followee_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete follows: %w", err)
	}

	return nil
}
