package services

import (
	"context"
	"time"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type pollService struct {
	title    string
	closesAt *time.Time
	now      func() time.Time
}

func NewPollService(title string, closesAt *time.Time) ports.PollService {
	return &pollService{
		title:    title,
		closesAt: closesAt,
		now:      time.Now,
	}
}

func (s *pollService) GetPoll(ctx context.Context) domain.Poll {
	return domain.NewPoll(s.title, s.closesAt, s.now())
}
