package ports

import (
	"context"

	"github.com/vncsmyrnk/voice/internal/core/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
	// InsertIfAbsent stores the profile keyed by email and fills in the persisted ID.
	InsertIfAbsent(ctx context.Context, user *domain.Identity) error
}

type AllowListRepository interface {
	// FindActiveEntry returns domain.ErrNotAllowed when no active entry matches.
	FindActiveEntry(ctx context.Context, email string) (*domain.AllowListEntry, error)
}
