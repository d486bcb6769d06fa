package services

import (
	"context"
	"fmt"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type tallyService struct {
	repo ports.TallyRepository
}

func NewTallyService(repo ports.TallyRepository) ports.TallyService {
	return &tallyService{
		repo: repo,
	}
}

// Fetch reads the counts as they are in the store right now. Nothing is cached.
func (s *tallyService) Fetch(ctx context.Context) (*domain.Tally, error) {
	counts, err := s.repo.CountsPerChoice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote counts: %w", err)
	}

	tally := domain.NewTally(counts)
	return &tally, nil
}
