package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	query := `SELECT id, email, name, avatar_url, created_at FROM users WHERE id = $1 AND deleted_at IS NULL`
	user := &domain.Identity{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// InsertIfAbsent keeps the first stored id for an email and refreshes the display fields.
func (r *UserRepository) InsertIfAbsent(ctx context.Context, user *domain.Identity) error {
	query := `
		INSERT INTO users (email, name, avatar_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
		    avatar_url = EXCLUDED.avatar_url
		RETURNING id, created_at
	`
	return r.db.QueryRowContext(ctx, query, user.Email, user.Name, user.AvatarURL).Scan(&user.ID, &user.CreatedAt)
}
