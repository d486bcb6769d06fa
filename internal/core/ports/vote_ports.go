package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/voice/internal/core/domain"
)

type VoteRepository interface {
	// FindByUser returns domain.ErrVoteNotFound when the user has not voted.
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Vote, error)
	// Insert returns domain.ErrDuplicateVote when the store already holds a vote for the user.
	Insert(ctx context.Context, vote *domain.Vote) error
	ListVotedUsers(ctx context.Context) ([]*domain.VotedUser, error)
}

type TallyRepository interface {
	CountsPerChoice(ctx context.Context) (map[int]int64, error)
}

type TallyService interface {
	Fetch(ctx context.Context) (*domain.Tally, error)
}

type AdminService interface {
	ListVotes(ctx context.Context) ([]*domain.VotedUser, error)
}
