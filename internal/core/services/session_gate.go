package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

const defaultResolveTimeout = 15 * time.Second

type SessionStatus struct {
	Identity    *domain.Identity       `json:"identity"`
	IsLoading   bool                   `json:"is_loading"`
	IsEligible  bool                   `json:"is_eligible"`
	HasVoted    bool                   `json:"has_voted"`
	CurrentVote []int                  `json:"current_vote"`
	Profile     *domain.AllowListEntry `json:"profile,omitempty"`
	Message     string                 `json:"message,omitempty"`

	epoch uint64
}

// SessionGate tracks who is signed in on one browser session and whether that identity may
// still vote. Every identity gets its own epoch; work started for an epoch is cancelled when
// the identity changes and its results are dropped if they arrive late.
type SessionGate struct {
	allowList ports.AllowListRepository
	votes     ports.VoteRepository
	provider  ports.FederatedProvider

	resolveTimeout time.Duration

	mu          sync.Mutex
	identity    *domain.Identity
	loading     bool
	eligible    bool
	hasVoted    bool
	currentVote domain.Selection
	profile     *domain.AllowListEntry
	message     string

	epoch       uint64
	epochCtx    context.Context
	cancelEpoch context.CancelFunc
	resolving   chan struct{}
}

func NewSessionGate(allowList ports.AllowListRepository, votes ports.VoteRepository, provider ports.FederatedProvider) *SessionGate {
	g := &SessionGate{
		allowList:      allowList,
		votes:          votes,
		provider:       provider,
		resolveTimeout: defaultResolveTimeout,
	}
	g.epochCtx, g.cancelEpoch = context.WithCancel(context.Background())
	return g
}

func (g *SessionGate) Status() SessionStatus {
	g.mu.Lock()
	defer g.mu.Unlock()

	return SessionStatus{
		Identity:    g.identity,
		IsLoading:   g.loading,
		IsEligible:  g.eligible,
		HasVoted:    g.hasVoted,
		CurrentVote: g.currentVote.Indices(),
		Profile:     g.profile,
		Message:     g.message,
		epoch:       g.epoch,
	}
}

// SignIn returns the provider URL the browser must visit. The gate only changes once the
// provider reports the new session through Observe.
func (g *SessionGate) SignIn(state string) string {
	return g.provider.AuthCodeURL(state)
}

// Observe reports the identity currently attached to the browser session. A change of
// identity cancels everything issued for the previous one and starts resolving the new one.
// Observe waits for the resolution or for ctx, whichever comes first.
func (g *SessionGate) Observe(ctx context.Context, identity *domain.Identity) {
	g.mu.Lock()
	if g.identity.Same(identity) {
		resolving := g.resolving
		g.mu.Unlock()
		wait(ctx, resolving)
		return
	}

	epoch, epochCtx := g.resetLocked(identity)
	resolving := g.resolving
	g.mu.Unlock()

	if identity == nil {
		return
	}

	go func() {
		defer close(resolving)
		resolveCtx, cancel := context.WithTimeout(epochCtx, g.resolveTimeout)
		defer cancel()
		g.resolve(resolveCtx, epoch, identity)
	}()

	wait(ctx, resolving)
}

// SignOut returns the gate to its initial unknown state.
func (g *SessionGate) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked(nil)
}

// Close cancels any outstanding work. The gate must not be used afterwards.
func (g *SessionGate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked(nil)
	g.cancelEpoch()
}

// RefreshVoteStatus reloads whether the current identity has a stored vote. A missing vote is
// not an error. Any other failure is returned and leaves HasVoted untouched.
func (g *SessionGate) RefreshVoteStatus(ctx context.Context) error {
	g.mu.Lock()
	identity, epoch := g.identity, g.epoch
	g.mu.Unlock()

	if identity == nil {
		return domain.ErrNotSignedIn
	}
	return g.refreshEpoch(ctx, epoch, identity)
}

// refreshEpoch reloads the vote status of identity only while epoch is still current. Once the
// gate moves on, the lookup is cancelled and its result dropped.
func (g *SessionGate) refreshEpoch(ctx context.Context, epoch uint64, identity *domain.Identity) error {
	g.mu.Lock()
	if epoch != g.epoch {
		g.mu.Unlock()
		return nil
	}
	epochCtx := g.epochCtx
	g.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(epochCtx, cancel)
	defer stop()

	return g.refreshVoteStatus(ctx, epoch, identity)
}

func (g *SessionGate) resetLocked(identity *domain.Identity) (uint64, context.Context) {
	g.cancelEpoch()
	g.epoch++
	g.epochCtx, g.cancelEpoch = context.WithCancel(context.Background())

	g.identity = identity
	g.loading = identity != nil
	g.eligible = false
	g.hasVoted = false
	g.currentVote = domain.Selection{}
	g.profile = nil
	g.message = ""
	g.resolving = nil
	if identity != nil {
		g.resolving = make(chan struct{})
	}

	return g.epoch, g.epochCtx
}

func (g *SessionGate) resolve(ctx context.Context, epoch uint64, identity *domain.Identity) {
	entry, err := g.allowList.FindActiveEntry(ctx, identity.Email)

	g.mu.Lock()
	if epoch != g.epoch {
		g.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		g.eligible = true
		g.profile = entry
	case errors.Is(err, domain.ErrNotAllowed):
		g.message = domain.ErrNotAllowed.Error()
	default:
		slog.Warn("eligibility check failed", "email", identity.Email, "error", err)
		g.message = fmt.Sprintf("unable to verify eligibility: %v", err)
	}
	eligible := g.eligible
	g.mu.Unlock()

	if eligible {
		if err := g.refreshVoteStatus(ctx, epoch, identity); err != nil {
			slog.Warn("vote status check failed", "user_id", identity.ID, "error", err)
			g.mu.Lock()
			if epoch == g.epoch {
				g.message = err.Error()
			}
			g.mu.Unlock()
		}
	}

	g.mu.Lock()
	if epoch == g.epoch {
		g.loading = false
	}
	g.mu.Unlock()
}

func (g *SessionGate) refreshVoteStatus(ctx context.Context, epoch uint64, identity *domain.Identity) error {
	vote, err := g.votes.FindByUser(ctx, identity.ID)

	g.mu.Lock()
	defer g.mu.Unlock()

	if epoch != g.epoch {
		return nil
	}
	if errors.Is(err, domain.ErrVoteNotFound) {
		g.hasVoted = false
		g.currentVote = domain.Selection{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check vote status: %w", err)
	}

	g.hasVoted = true
	g.currentVote = vote.Selection()
	return nil
}

func wait(ctx context.Context, done <-chan struct{}) {
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
}
