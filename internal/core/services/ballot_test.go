package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/voice/internal/core/domain"
)

type ballotFixture struct {
	allow  *fakeAllowList
	votes  *fakeVoteRepo
	tally  *fakeTallyRepo
	log    *eventLog
	gate   *SessionGate
	ballot *Ballot
	voter  *domain.Identity
}

func newBallotFixture(t *testing.T) *ballotFixture {
	t.Helper()

	log := &eventLog{}
	f := &ballotFixture{
		allow: newFakeAllowList(),
		votes: newFakeVoteRepo(log),
		tally: &fakeTallyRepo{counts: map[int]int64{0: 3, 2: 5}, log: log},
		log:   log,
		voter: newIdentity("voter@kku.ac.th"),
	}
	f.allow.allow(f.voter.Email, "Voter")
	f.gate = NewSessionGate(f.allow, f.votes, fakeProvider{})
	f.ballot = NewBallot(f.gate, f.votes, NewTallyService(f.tally))
	return f
}

func (f *ballotFixture) signIn(t *testing.T) {
	t.Helper()
	f.gate.Observe(context.Background(), f.voter)
	require.Equal(t, StateSelecting, f.ballot.State())
}

func (f *ballotFixture) selectChoices(t *testing.T, indices ...int) {
	t.Helper()
	for _, idx := range indices {
		_, err := f.ballot.Toggle(idx)
		require.NoError(t, err)
	}
}

func TestBallot_InertUntilEligible(t *testing.T) {
	f := newBallotFixture(t)

	assert.Equal(t, StateUnknown, f.ballot.State())
	_, err := f.ballot.Toggle(1)
	assert.ErrorIs(t, err, domain.ErrSelectionDisabled)

	f.gate.Observe(context.Background(), newIdentity("outsider@example.com"))
	assert.Equal(t, StateUnknown, f.ballot.State())
	_, err = f.ballot.Toggle(1)
	assert.ErrorIs(t, err, domain.ErrSelectionDisabled)

	view := f.ballot.View()
	assert.False(t, view.CanSubmit)
	for _, disabled := range view.Disabled {
		assert.True(t, disabled)
	}
	assert.Equal(t, domain.ErrNotAllowed.Error(), view.Message)
}

func TestBallot_ToggleRejectsUnknownChoice(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)

	_, err := f.ballot.Toggle(domain.ChoiceCount)
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)
}

func TestBallot_ViewDisablesThirdChoice(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 1, 3)

	view := f.ballot.View()
	assert.Equal(t, []int{1, 3}, view.Selection)
	assert.True(t, view.CanSubmit)
	assert.False(t, view.Disabled[1])
	assert.True(t, view.Disabled[2])
	assert.False(t, view.Disabled[domain.NoOpinion])
}

func TestBallot_SubmitTwoChoices(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 2, 5)

	result, err := f.ballot.Submit(context.Background())
	require.NoError(t, err)

	require.NotNil(t, result.Vote)
	assert.Equal(t, f.voter.ID, result.Vote.UserID)
	assert.Equal(t, 2, result.Vote.Choice1)
	require.NotNil(t, result.Vote.Choice2)
	assert.Equal(t, 5, *result.Vote.Choice2)
	assert.False(t, result.Vote.IsNoOpinion)
	assert.False(t, result.Duplicate)

	require.NotNil(t, result.Tally)
	assert.Equal(t, int64(8), result.Tally.Total)

	assert.Equal(t, StateVoted, f.ballot.State())
	view := f.ballot.View()
	assert.Empty(t, view.Selection)
	assert.Equal(t, []int{2, 5}, view.YourVote)
	assert.True(t, f.gate.Status().HasVoted)

	// observe lookup, then write, status refresh, tally in that order
	assert.Equal(t, []string{"find", "insert", "find", "tally"}, f.log.list())
}

func TestBallot_SubmitNoOpinion(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 4, domain.NoOpinion)

	result, err := f.ballot.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.NoOpinion, result.Vote.Choice1)
	assert.Nil(t, result.Vote.Choice2)
	assert.True(t, result.Vote.IsNoOpinion)
}

func TestBallot_SubmitRejectionsDoNotWrite(t *testing.T) {
	tests := []struct {
		name      string
		selection domain.Selection
		wantErr   error
	}{
		{"empty", domain.Selection{}, domain.ErrEmptySelection},
		{"no opinion combined", domain.NewSelection(3, domain.NoOpinion), domain.ErrNoOpinionCombined},
		{"more than two", domain.NewSelection(0, 1, 2), domain.ErrTooManyChoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBallotFixture(t)
			f.signIn(t)
			f.ballot.mu.Lock()
			f.ballot.selection = tt.selection
			f.ballot.mu.Unlock()

			result, err := f.ballot.Submit(context.Background())

			assert.Nil(t, result)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.votes.insertCount())
			assert.Equal(t, tt.wantErr.Error(), f.ballot.View().Message)
			assert.Equal(t, StateSelecting, f.ballot.State())
		})
	}
}

func TestBallot_SubmitAfterVotingIsRejected(t *testing.T) {
	f := newBallotFixture(t)
	f.votes.put(&domain.Vote{UserID: f.voter.ID, Choice1: 1})
	f.gate.Observe(context.Background(), f.voter)
	require.Equal(t, StateVoted, f.ballot.State())

	_, err := f.ballot.Submit(context.Background())

	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	assert.Zero(t, f.votes.insertCount())
}

func TestBallot_DuplicateConvergesToVoted(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 0, 6)

	// another tab voted after this one loaded
	f.votes.put(&domain.Vote{UserID: f.voter.ID, Choice1: domain.NoOpinion, IsNoOpinion: true})

	result, err := f.ballot.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Duplicate)
	assert.Nil(t, result.Tally)
	assert.Equal(t, StateVoted, f.ballot.State())
	assert.True(t, f.gate.Status().HasVoted)

	view := f.ballot.View()
	assert.Empty(t, view.Message)
	assert.Empty(t, view.Selection)
	assert.Equal(t, []int{domain.NoOpinion}, view.YourVote)
	assert.NotContains(t, f.log.list(), "tally")
}

func TestBallot_OtherInsertErrorAllowsRetry(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 1, 2)
	f.votes.insertErr = errors.New("failed to save vote: connection reset")

	_, err := f.ballot.Submit(context.Background())
	require.Error(t, err)

	view := f.ballot.View()
	assert.Equal(t, StateSelecting, view.State)
	assert.Equal(t, "failed to save vote: connection reset", view.Message)
	assert.Equal(t, []int{1, 2}, view.Selection)
	assert.False(t, f.gate.Status().HasVoted)

	f.votes.insertErr = nil
	result, err := f.ballot.Submit(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result.Vote)
	assert.Equal(t, 2, f.votes.insertCount())
}

func TestBallot_TallyFailureAfterVoteIsReported(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 3)
	f.tally.err = errors.New("view missing")

	result, err := f.ballot.Submit(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, result.Vote)
	assert.Nil(t, result.Tally)
	assert.Equal(t, StateVoted, f.ballot.State())
	assert.Contains(t, f.ballot.View().Message, "view missing")
}

func TestBallot_IdentityChangeRestartsSelection(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 1, 2)

	other := newIdentity("other@kku.ac.th")
	f.allow.allow(other.Email, "Other")
	f.gate.Observe(context.Background(), other)

	view := f.ballot.View()
	assert.Equal(t, StateSelecting, view.State)
	assert.Empty(t, view.Selection)

	f.gate.SignOut()
	assert.Equal(t, StateUnknown, f.ballot.State())
}

func TestBallot_Tally(t *testing.T) {
	f := newBallotFixture(t)

	tally, err := f.ballot.Tally(context.Background())
	require.NoError(t, err)

	assert.Equal(t, [domain.ChoiceCount]int64{3, 0, 5, 0, 0, 0, 0, 0}, tally.Counts)
	assert.Equal(t, int64(8), tally.Total)
	assert.Equal(t, int64(5), tally.Max)
}

func TestBallot_IdentityChangeDuringSubmitIsSuperseded(t *testing.T) {
	tests := []struct {
		name      string
		duplicate bool
	}{
		{"new vote", false},
		{"duplicate vote", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBallotFixture(t)
			f.signIn(t)
			f.selectChoices(t, 1, 2)
			if tt.duplicate {
				f.votes.put(&domain.Vote{UserID: f.voter.ID, Choice1: 4})
			}

			other := newIdentity("other@kku.ac.th")
			f.allow.allow(other.Email, "Other")
			release := make(chan struct{})
			f.votes.blockInsert(release)

			type outcome struct {
				result *SubmitResult
				err    error
			}
			done := make(chan outcome, 1)
			go func() {
				result, err := f.ballot.Submit(context.Background())
				done <- outcome{result, err}
			}()

			<-f.votes.insertStarted
			f.gate.Observe(context.Background(), other)
			close(release)
			out := <-done

			require.NoError(t, out.err)
			require.NotNil(t, out.result)
			assert.True(t, out.result.Superseded)
			assert.Nil(t, out.result.Vote)
			assert.Nil(t, out.result.Tally)
			assert.False(t, out.result.Duplicate)

			status := f.gate.Status()
			require.NotNil(t, status.Identity)
			assert.Equal(t, other.ID, status.Identity.ID)
			assert.False(t, status.HasVoted)
			assert.Empty(t, status.CurrentVote)

			view := f.ballot.View()
			assert.Equal(t, StateSelecting, view.State)
			assert.Empty(t, view.Selection)
			assert.Empty(t, view.Message)

			// voter lookup, write, other's lookup; nothing after the write returned
			assert.Equal(t, []string{"find", "insert", "find"}, f.log.list())
		})
	}
}

func TestBallot_StatusRefreshFailureAfterVoteIsReported(t *testing.T) {
	f := newBallotFixture(t)
	f.signIn(t)
	f.selectChoices(t, 5)
	f.votes.mu.Lock()
	f.votes.findErr = errors.New("read timeout")
	f.votes.mu.Unlock()

	result, err := f.ballot.Submit(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, result.Vote)
	assert.NotNil(t, result.Tally)
	view := f.ballot.View()
	assert.Contains(t, view.Message, "your vote was recorded")
	assert.Contains(t, view.Message, "read timeout")
}
