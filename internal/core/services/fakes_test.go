package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/voice/internal/core/domain"
)

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type fakeAllowList struct {
	mu      sync.Mutex
	entries map[string]*domain.AllowListEntry
	errs    map[string]error
	// block holds FindActiveEntry for an email until the channel is closed. The context is
	// ignored on purpose so late responses can be simulated.
	block   map[string]chan struct{}
	started chan string
}

func newFakeAllowList() *fakeAllowList {
	return &fakeAllowList{
		entries: make(map[string]*domain.AllowListEntry),
		errs:    make(map[string]error),
		block:   make(map[string]chan struct{}),
		started: make(chan string, 64),
	}
}

func (f *fakeAllowList) allow(email, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[email] = &domain.AllowListEntry{Email: email, FullName: name, Active: true}
}

func (f *fakeAllowList) FindActiveEntry(ctx context.Context, email string) (*domain.AllowListEntry, error) {
	f.started <- email

	f.mu.Lock()
	block := f.block[email]
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[email]; err != nil {
		return nil, err
	}
	entry, ok := f.entries[email]
	if !ok {
		return nil, domain.ErrNotAllowed
	}
	return entry, nil
}

type fakeVoteRepo struct {
	mu        sync.Mutex
	votes     map[uuid.UUID]*domain.Vote
	findErr   error
	insertErr error
	inserts   int
	log       *eventLog

	// findBlock and insertBlock hold the call until the channel is closed, ignoring the
	// context, so responses can arrive after the session moved on.
	findBlock     map[uuid.UUID]chan struct{}
	findStarted   chan uuid.UUID
	insertBlock   chan struct{}
	insertStarted chan struct{}
}

func newFakeVoteRepo(log *eventLog) *fakeVoteRepo {
	return &fakeVoteRepo{
		votes:         make(map[uuid.UUID]*domain.Vote),
		log:           log,
		findBlock:     make(map[uuid.UUID]chan struct{}),
		findStarted:   make(chan uuid.UUID, 64),
		insertStarted: make(chan struct{}, 64),
	}
}

func (f *fakeVoteRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Vote, error) {
	f.log.add("find")
	f.findStarted <- userID

	f.mu.Lock()
	block := f.findBlock[userID]
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	v, ok := f.votes[userID]
	if !ok {
		return nil, domain.ErrVoteNotFound
	}
	return v, nil
}

func (f *fakeVoteRepo) Insert(ctx context.Context, vote *domain.Vote) error {
	f.log.add("insert")
	f.insertStarted <- struct{}{}

	f.mu.Lock()
	block := f.insertBlock
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.votes[vote.UserID]; ok {
		return domain.ErrDuplicateVote
	}
	f.votes[vote.UserID] = vote
	return nil
}

func (f *fakeVoteRepo) ListVotedUsers(ctx context.Context) ([]*domain.VotedUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.VotedUser
	for _, v := range f.votes {
		out = append(out, &domain.VotedUser{UserID: v.UserID, Choice1: v.Choice1, Choice2: v.Choice2, IsNoOpinion: v.IsNoOpinion})
	}
	return out, nil
}

func (f *fakeVoteRepo) put(vote *domain.Vote) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes[vote.UserID] = vote
}

func (f *fakeVoteRepo) blockFind(userID uuid.UUID, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findBlock[userID] = release
}

func (f *fakeVoteRepo) blockInsert(release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertBlock = release
}

func (f *fakeVoteRepo) insertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inserts
}

type fakeTallyRepo struct {
	counts map[int]int64
	err    error
	log    *eventLog
}

func (f *fakeTallyRepo) CountsPerChoice(ctx context.Context) (map[int]int64, error) {
	f.log.add("tally")
	return f.counts, f.err
}

type fakeProvider struct{}

func (fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (fakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	return "id-token-for-" + code, nil
}

func newIdentity(email string) *domain.Identity {
	return &domain.Identity{ID: uuid.New(), Email: email, Name: email}
}
