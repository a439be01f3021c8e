package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

// VideoRepositoryPG persists assembled videos backed by PostgreSQL.
type VideoRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewVideoRepository creates a new VideoRepositoryPG.
func NewVideoRepository(pool *pgxpool.Pool) *VideoRepositoryPG {
	return &VideoRepositoryPG{pool: pool}
}

// SaveResult records a successful generation atomically: the video row, its
// history entry linking the original query, and the owner's usage counter all
// commit together or not at all. The video is updated in place with its
// generated id and timestamp.
func (r *VideoRepositoryPG) SaveResult(ctx context.Context, video *domain.Video, query string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
INSERT INTO videos (title, storage_key, url, owner_id)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at;
`, video.Title, video.StorageKey, video.URL, video.OwnerID)
	if err := row.Scan(&video.ID, &video.CreatedAt); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO history (owner_id, query, video_id)
VALUES ($1, $2, $3);
`, video.OwnerID, query, video.ID); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	tag, err := tx.Exec(ctx, `
UPDATE users
SET video_count = video_count + 1
WHERE id = $1;
`, video.OwnerID)
	if err != nil {
		return fmt.Errorf("bump video_count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit(ctx)
}

// GetByID fetches a video by id.
func (r *VideoRepositoryPG) GetByID(ctx context.Context, id int64) (*domain.Video, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, title, storage_key, url, owner_id, created_at
FROM videos
WHERE id = $1;
`, id)
	var v domain.Video
	if err := row.Scan(&v.ID, &v.Title, &v.StorageKey, &v.URL, &v.OwnerID, &v.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByOwner returns the owner's videos, newest first.
func (r *VideoRepositoryPG) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Video, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, title, storage_key, url, owner_id, created_at
FROM videos
WHERE owner_id = $1
ORDER BY created_at DESC;
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := make([]domain.Video, 0)
	for rows.Next() {
		var v domain.Video
		if err := rows.Scan(&v.ID, &v.Title, &v.StorageKey, &v.URL, &v.OwnerID, &v.CreatedAt); err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
