package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"artspace/internal/model"
)

type artworkRepository struct {
	db *sqlx.DB
}

func NewArtworkRepository(db *sqlx.DB) ArtworkRepository {
	return &artworkRepository{db: db}
}

// Create inserts a new artwork.
func (r *artworkRepository) Create(ctx context.Context, a *model.Artwork) error {
	query := `
		INSERT INTO artworks (user_id, title, description, image_url, image_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query, a.UserID, a.Title, a.Description, a.ImageURL, a.ImageKey)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert artwork: %w", err)
	}

	return nil
}

// GetByID retrieves a single artwork without view annotations.
func (r *artworkRepository) GetByID(ctx context.Context, artworkID int64) (*model.Artwork, error) {
	query := `
		SELECT id, user_id, title, description, image_url, image_key, created_at, updated_at
		FROM artworks
		WHERE id = $1
	`

	var a model.Artwork
	err := r.db.GetContext(ctx, &a, query, artworkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrArtworkNotFound
		}
		return nil, fmt.Errorf("failed to get artwork: %w", err)
	}

	return &a, nil
}

func (r *artworkRepository) GetAuthorID(ctx context.Context, artworkID int64) (int64, error) {
	query := `SELECT user_id FROM artworks WHERE id = $1`

	var authorID int64
	err := r.db.GetContext(ctx, &authorID, query, artworkID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, model.ErrArtworkNotFound
		}
		return 0, fmt.Errorf("failed to get artwork author: %w", err)
	}

	return authorID, nil
}

// artworkRow carries the joined artist columns plus the view annotations.
type artworkRow struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	ImageURL    string    `db:"image_url"`
	ImageKey    string    `db:"image_key"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	LikesCount  int       `db:"likes_count"`
	Liked       bool      `db:"liked"`

	ArtistID        int64   `db:"artist.id"`
	ArtistUsername  string  `db:"artist.username"`
	ArtistName      string  `db:"artist.name"`
	ArtistAvatarURL *string `db:"artist.avatar_url"`
}

func (row artworkRow) toArtwork() model.Artwork {
	return model.Artwork{
		ID:          row.ID,
		UserID:      row.UserID,
		Title:       row.Title,
		Description: row.Description,
		ImageURL:    row.ImageURL,
		ImageKey:    row.ImageKey,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		LikesCount:  row.LikesCount,
		Liked:       row.Liked,
		Artist: &model.UserSummary{
			ID:        row.ArtistID,
			Username:  row.ArtistUsername,
			Name:      row.ArtistName,
			AvatarURL: row.ArtistAvatarURL,
		},
	}
}

const artworkListSelect = `
	SELECT a.id, a.user_id, a.title, a.description, a.image_url, a.image_key, a.created_at, a.updated_at,
	       u.id AS "artist.id", u.username AS "artist.username",
	       u.name AS "artist.name", u.avatar_url AS "artist.avatar_url",
	       (SELECT COUNT(*) FROM artwork_likes l WHERE l.artwork_id = a.id) AS likes_count,
	       EXISTS(SELECT 1 FROM artwork_likes l WHERE l.artwork_id = a.id AND l.user_id = $1) AS liked
	FROM artworks a
	JOIN users u ON u.id = a.user_id
`

// ListAll returns every artwork newest first with artist info and the
// viewer's like state. A nil viewer yields liked=false everywhere.
func (r *artworkRepository) ListAll(ctx context.Context, viewerID *int64) ([]model.Artwork, error) {
	query := artworkListSelect + ` ORDER BY a.created_at DESC`

	var rows []artworkRow
	err := r.db.SelectContext(ctx, &rows, query, viewerOrZero(viewerID))
	if err != nil {
		return nil, fmt.Errorf("failed to list artworks: %w", err)
	}

	artworks := make([]model.Artwork, len(rows))
	for i, row := range rows {
		artworks[i] = row.toArtwork()
	}

	return artworks, nil
}

// ListByUser returns one user's artworks newest first.
func (r *artworkRepository) ListByUser(ctx context.Context, userID int64, viewerID *int64) ([]model.Artwork, error) {
	query := artworkListSelect + ` WHERE a.user_id = $2 ORDER BY a.created_at DESC`

	var rows []artworkRow
	err := r.db.SelectContext(ctx, &rows, query, viewerOrZero(viewerID), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user artworks: %w", err)
	}

	artworks := make([]model.Artwork, len(rows))
	for i, row := range rows {
		artworks[i] = row.toArtwork()
	}

	return artworks, nil
}

// Update persists the mutable fields of an artwork.
func (r *artworkRepository) Update(ctx context.Context, a *model.Artwork) error {
	query := `
		UPDATE artworks
		SET title = $1, description = $2, image_url = $3, image_key = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, a.Title, a.Description, a.ImageURL, a.ImageKey, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.ErrArtworkNotFound
		}
		return fmt.Errorf("failed to update artwork: %w", err)
	}

	return nil
}

// Delete removes the artwork. Comments, like memberships and notification
// references cascade at the schema level.
func (r *artworkRepository) Delete(ctx context.Context, artworkID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM artworks WHERE id = $1`, artworkID)
	if err != nil {
		return fmt.Errorf("failed to delete artwork: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrArtworkNotFound
	}

	return nil
}

// ToggleLike adds the user to the artwork's like set, or removes them if
// already present. The insert and delete are each idempotent single-row
// writes, so no transaction is needed and concurrent toggles cannot corrupt
// the count the way read-modify-write on an integer column would.
func (r *artworkRepository) ToggleLike(ctx context.Context, artworkID, userID int64) (bool, int, error) {
	insert := `
		INSERT INTO artwork_likes (artwork_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (artwork_id, user_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, insert, artworkID, userID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to like artwork: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	liked := inserted > 0
	if !liked {
		_, err = r.db.ExecContext(ctx, `DELETE FROM artwork_likes WHERE artwork_id = $1 AND user_id = $2`, artworkID, userID)
		if err != nil {
			return false, 0, fmt.Errorf("failed to unlike artwork: %w", err)
		}
	}

	var count int
	err = r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM artwork_likes WHERE artwork_id = $1`, artworkID)
	if err != nil {
		return false, 0, fmt.Errorf("failed to count likes: %w", err)
	}

	return liked, count, nil
}

// GetImageKeysByUser returns the storage keys of a user's artwork images so
// they can be removed from object storage before the rows are deleted.
func (r *artworkRepository) GetImageKeysByUser(ctx context.Context, userID int64) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys, `SELECT image_key FROM artworks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get artwork image keys: %w", err)
	}
	return keys, nil
}

func (r *artworkRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM artworks WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user artworks: %w", err)
	}
	return nil
}

// viewerOrZero maps an absent viewer to id 0, which matches no user.
func viewerOrZero(viewerID *int64) int64 {
	if viewerID == nil {
		return 0
	}
	return *viewerID
}
