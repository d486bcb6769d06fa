package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type allowListRepository struct {
	db *sql.DB
}

func NewAllowListRepository(db *sql.DB) ports.AllowListRepository {
	return &allowListRepository{
		db: db,
	}
}

func (r *allowListRepository) FindActiveEntry(ctx context.Context, email string) (*domain.AllowListEntry, error) {
	query := `
		SELECT email, full_name, department, position, is_active
		FROM allowed_emails
		WHERE lower(email) = $1 AND is_active
	`
	var entry domain.AllowListEntry
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))).Scan(
		&entry.Email, &entry.FullName, &entry.Department, &entry.Position, &entry.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotAllowed
		}
		return nil, fmt.Errorf("failed to check allow-list: %w", err)
	}
	return &entry, nil
}
