package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type BallotState string

const (
	StateUnknown    BallotState = "unknown"
	StateSelecting  BallotState = "selecting"
	StateSubmitting BallotState = "submitting"
	StateVoted      BallotState = "voted"
)

type BallotView struct {
	State     BallotState `json:"state"`
	Selection []int       `json:"selection"`
	Disabled  []bool      `json:"disabled"`
	CanSubmit bool        `json:"can_submit"`
	YourVote  []int       `json:"your_vote,omitempty"`
	Message   string      `json:"message,omitempty"`
}

type SubmitResult struct {
	Vote *domain.Vote `json:"vote,omitempty"`
	// Duplicate is set when the store already held a vote for this identity.
	Duplicate bool `json:"duplicate"`
	// Superseded is set when the identity changed while the write was outstanding.
	Superseded bool          `json:"superseded,omitempty"`
	Tally      *domain.Tally `json:"tally,omitempty"`
}

// Ballot owns the selection of one browser session and performs its single vote write.
type Ballot struct {
	gate  *SessionGate
	votes ports.VoteRepository
	tally ports.TallyService

	mu         sync.Mutex
	epoch      uint64
	selection  domain.Selection
	submitting bool
	message    string
}

func NewBallot(gate *SessionGate, votes ports.VoteRepository, tally ports.TallyService) *Ballot {
	return &Ballot{
		gate:  gate,
		votes: votes,
		tally: tally,
		epoch: gate.Status().epoch,
	}
}

func (b *Ballot) View() BallotView {
	status := b.gate.Status()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked(status)

	state := b.stateLocked(status)
	view := BallotView{
		State:     state,
		Selection: b.selection.Indices(),
		Disabled:  make([]bool, domain.ChoiceCount),
		CanSubmit: state == StateSelecting && b.selection.Submittable(),
		Message:   b.message,
	}
	for idx := range view.Disabled {
		view.Disabled[idx] = state != StateSelecting || b.selection.Disabled(idx)
	}
	if state == StateVoted {
		view.YourVote = status.CurrentVote
	}
	if view.Message == "" {
		view.Message = status.Message
	}
	return view
}

func (b *Ballot) State() BallotState {
	status := b.gate.Status()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked(status)
	return b.stateLocked(status)
}

// Toggle applies a click on a choice. Clicks are rejected unless the session is selecting.
func (b *Ballot) Toggle(idx int) (domain.Selection, error) {
	if !domain.ValidChoice(idx) {
		return domain.Selection{}, domain.ErrInvalidChoice
	}
	status := b.gate.Status()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked(status)

	if b.stateLocked(status) != StateSelecting {
		return b.selection, domain.ErrSelectionDisabled
	}
	b.selection = b.selection.Toggle(idx)
	b.message = ""
	return b.selection, nil
}

// Submit writes the vote for the current selection. The write completes before the vote
// status is refreshed and before the tally is read.
func (b *Ballot) Submit(ctx context.Context) (*SubmitResult, error) {
	status := b.gate.Status()

	b.mu.Lock()
	b.syncLocked(status)
	vote, err := b.prepareLocked(status)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	b.submitting = true
	epoch, identity := b.epoch, status.Identity
	b.mu.Unlock()

	err = b.votes.Insert(ctx, vote)

	status = b.gate.Status()
	b.mu.Lock()
	b.syncLocked(status)
	if epoch != b.epoch {
		b.mu.Unlock()
		return &SubmitResult{Superseded: true}, nil
	}
	b.submitting = false

	switch {
	case errors.Is(err, domain.ErrDuplicateVote):
		b.selection = domain.Selection{}
		b.message = ""
		b.mu.Unlock()

		if err := b.gate.refreshEpoch(ctx, epoch, identity); err != nil {
			b.setMessage(epoch, err.Error())
			return nil, err
		}
		if b.superseded(epoch) {
			return &SubmitResult{Superseded: true}, nil
		}
		return &SubmitResult{Duplicate: true}, nil
	case err != nil:
		b.message = err.Error()
		b.mu.Unlock()
		return nil, err
	}

	b.selection = domain.Selection{}
	b.message = ""
	b.mu.Unlock()

	result := &SubmitResult{Vote: vote}
	if err := b.gate.refreshEpoch(ctx, epoch, identity); err != nil {
		slog.Warn("vote saved but status refresh failed", "user_id", vote.UserID, "error", err)
		b.setMessage(epoch, fmt.Sprintf("your vote was recorded but your voting status could not be reloaded: %v", err))
	}
	if b.superseded(epoch) {
		return &SubmitResult{Superseded: true}, nil
	}

	tally, err := b.tally.Fetch(ctx)
	if err != nil {
		slog.Warn("vote saved but tally fetch failed", "user_id", vote.UserID, "error", err)
		b.setMessage(epoch, fmt.Sprintf("your vote was recorded but results are unavailable: %v", err))
		return result, nil
	}
	result.Tally = tally
	return result, nil
}

func (b *Ballot) Tally(ctx context.Context) (*domain.Tally, error) {
	return b.tally.Fetch(ctx)
}

func (b *Ballot) prepareLocked(status SessionStatus) (*domain.Vote, error) {
	if status.Identity == nil {
		return nil, domain.ErrNotSignedIn
	}
	if status.HasVoted {
		b.message = domain.ErrAlreadyVoted.Error()
		return nil, domain.ErrAlreadyVoted
	}
	if b.submitting {
		return nil, domain.ErrSubmissionInProgress
	}
	if b.stateLocked(status) != StateSelecting {
		return nil, domain.ErrSelectionDisabled
	}

	vote, err := domain.NewVote(status.Identity.ID, b.selection)
	if err != nil {
		b.message = err.Error()
		return nil, err
	}
	return vote, nil
}

// syncLocked restarts the ballot when the gate moved on to another identity.
func (b *Ballot) syncLocked(status SessionStatus) {
	if status.epoch == b.epoch {
		return
	}
	b.epoch = status.epoch
	b.selection = domain.Selection{}
	b.submitting = false
	b.message = ""
}

func (b *Ballot) stateLocked(status SessionStatus) BallotState {
	switch {
	case b.submitting:
		return StateSubmitting
	case status.Identity == nil || status.IsLoading:
		return StateUnknown
	case status.HasVoted:
		return StateVoted
	case status.IsEligible:
		return StateSelecting
	default:
		return StateUnknown
	}
}

// superseded reports whether the gate moved on to another identity since epoch.
func (b *Ballot) superseded(epoch uint64) bool {
	status := b.gate.Status()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.syncLocked(status)
	return epoch != b.epoch
}

func (b *Ballot) setMessage(epoch uint64, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if epoch == b.epoch {
		b.message = message
	}
}
