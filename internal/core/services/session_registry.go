package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type Session struct {
	ID     string
	Gate   *SessionGate
	Ballot *Ballot

	lastSeen time.Time
}

// SessionRegistry holds the gate and ballot of every browser session. Sessions are created on
// first use and torn down explicitly, when idle, or when the registry shuts down.
type SessionRegistry struct {
	allowList ports.AllowListRepository
	votes     ports.VoteRepository
	tally     ports.TallyService
	provider  ports.FederatedProvider
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionRegistry(allowList ports.AllowListRepository, votes ports.VoteRepository, tally ports.TallyService, provider ports.FederatedProvider) *SessionRegistry {
	return &SessionRegistry{
		allowList: allowList,
		votes:     votes,
		tally:     tally,
		provider:  provider,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

func (r *SessionRegistry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		gate := NewSessionGate(r.allowList, r.votes, r.provider)
		s = &Session{
			ID:     id,
			Gate:   gate,
			Ballot: NewBallot(gate, r.votes, r.tally),
		}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s
}

func (r *SessionRegistry) Close(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.Gate.Close()
	}
}

// Sweep tears down sessions not seen for longer than idle and reports how many were removed.
func (r *SessionRegistry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Gate.Close()
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done, then shuts the registry down.
func (r *SessionRegistry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Shutdown()
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				slog.Info("idle sessions closed", "count", n)
			}
		}
	}
}

func (r *SessionRegistry) Shutdown() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Gate.Close()
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
