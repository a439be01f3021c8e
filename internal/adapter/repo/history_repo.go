package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aayush-wiz/doodle-ai-app/internal/domain"
)

// HistoryRepositoryPG reads generation history backed by PostgreSQL. Rows are
// written by VideoRepositoryPG.SaveResult inside the success transaction.
type HistoryRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepositoryPG.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepositoryPG {
	return &HistoryRepositoryPG{pool: pool}
}

// ListByOwner returns the owner's past queries, newest first.
func (r *HistoryRepositoryPG) ListByOwner(ctx context.Context, ownerID int64) ([]domain.History, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, owner_id, query, video_id, created_at
FROM history
WHERE owner_id = $1
ORDER BY created_at DESC;
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.History, 0)
	for rows.Next() {
		var h domain.History
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Query, &h.VideoID, &h.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}
