package ports

import (
	"context"

	"github.com/vncsmyrnk/voice/internal/core/domain"
)

type PollService interface {
	GetPoll(ctx context.Context) domain.Poll
}

type HealthChecker interface {
	PingContext(ctx context.Context) error
}
