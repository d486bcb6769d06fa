package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type adminService struct {
	votes ports.VoteRepository
}

func NewAdminService(votes ports.VoteRepository) ports.AdminService {
	return &adminService{
		votes: votes,
	}
}

// ListVotes returns every cast vote, newest first.
func (s *adminService) ListVotes(ctx context.Context) ([]*domain.VotedUser, error) {
	users, err := s.votes.ListVotedUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	if users == nil {
		users = []*domain.VotedUser{}
	}
	return users, nil
}
