package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type tallyRepository struct {
	db *sql.DB
}

func NewTallyRepository(db *sql.DB) ports.TallyRepository {
	return &tallyRepository{
		db: db,
	}
}

// CountsPerChoice reads the vote_counts view. Choices nobody picked are absent from the map.
func (r *tallyRepository) CountsPerChoice(ctx context.Context) (map[int]int64, error) {
	query := `SELECT choice, vote_count FROM vote_counts`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote_counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int64)
	for rows.Next() {
		var choice int
		var count int64
		if err := rows.Scan(&choice, &count); err != nil {
			return nil, fmt.Errorf("failed to scan vote count: %w", err)
		}
		counts[choice] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating vote counts: %w", err)
	}
	return counts, nil
}
