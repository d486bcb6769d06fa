package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Vote struct {
	UserID      uuid.UUID `json:"user_id"`
	Choice1     int       `json:"choice_1"`
	Choice2     *int      `json:"choice_2"`
	IsNoOpinion bool      `json:"is_no_opinion"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewVote builds the record written for a submitted selection.
func NewVote(userID uuid.UUID, s Selection) (*Vote, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	vote := &Vote{
		UserID:      userID,
		Choice1:     s.indices[0],
		IsNoOpinion: s.IsNoOpinion(),
	}
	if len(s.indices) == 2 {
		second := s.indices[1]
		vote.Choice2 = &second
	}
	return vote, nil
}

// Selection reconstructs the choices a stored vote was cast for.
func (v *Vote) Selection() Selection {
	if v.IsNoOpinion {
		return NewSelection(NoOpinion)
	}
	indices := []int{v.Choice1}
	if v.Choice2 != nil {
		indices = append(indices, *v.Choice2)
	}
	return NewSelection(indices...)
}

func FormatVote(v *Vote) string {
	indices := v.Selection().Indices()
	labels := make([]string, 0, len(indices))
	for _, idx := range indices {
		labels = append(labels, ChoiceLabel(idx))
	}
	return strings.Join(labels, ", ")
}

type VotedUser struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	Choice1     int       `json:"choice_1"`
	Choice2     *int      `json:"choice_2"`
	IsNoOpinion bool      `json:"is_no_opinion"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *VotedUser) Vote() *Vote {
	return &Vote{
		UserID:      u.UserID,
		Choice1:     u.Choice1,
		Choice2:     u.Choice2,
		IsNoOpinion: u.IsNoOpinion,
		CreatedAt:   u.CreatedAt,
	}
}
