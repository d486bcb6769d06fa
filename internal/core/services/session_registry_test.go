package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() (*SessionRegistry, *time.Time) {
	allow := newFakeAllowList()
	votes := newFakeVoteRepo(nil)
	registry := NewSessionRegistry(allow, votes, NewTallyService(&fakeTallyRepo{}), fakeProvider{})

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }
	return registry, &now
}

func TestSessionRegistry_GetReusesSession(t *testing.T) {
	registry, _ := newTestRegistry()

	first := registry.Get("sid-1")
	again := registry.Get("sid-1")
	other := registry.Get("sid-2")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.NotSame(t, first.Gate, other.Gate)
	assert.Equal(t, 2, registry.Len())
}

func TestSessionRegistry_CloseTearsDownGate(t *testing.T) {
	registry, _ := newTestRegistry()
	session := registry.Get("sid-1")
	session.Gate.Observe(context.Background(), newIdentity("voter@kku.ac.th"))

	registry.Close("sid-1")

	assert.Zero(t, registry.Len())
	assert.Nil(t, session.Gate.Status().Identity)
	assert.NotSame(t, session, registry.Get("sid-1"))
}

func TestSessionRegistry_SweepRemovesIdleSessions(t *testing.T) {
	registry, now := newTestRegistry()

	registry.Get("stale")
	*now = now.Add(20 * time.Minute)
	registry.Get("fresh")
	*now = now.Add(20 * time.Minute)

	removed := registry.Sweep(30 * time.Minute)

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, registry.Len())
}

func TestSessionRegistry_RunShutsDownOnCancel(t *testing.T) {
	registry, _ := newTestRegistry()
	registry.Get("sid-1")
	registry.Get("sid-2")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		registry.Run(ctx, time.Hour, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "registry did not stop")
	}
	assert.Zero(t, registry.Len())
}
