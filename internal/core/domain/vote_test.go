package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVote(t *testing.T) {
	userID := uuid.New()

	t.Run("two ordinary choices", func(t *testing.T) {
		vote, err := NewVote(userID, NewSelection(2, 5))
		require.NoError(t, err)
		assert.Equal(t, userID, vote.UserID)
		assert.Equal(t, 2, vote.Choice1)
		require.NotNil(t, vote.Choice2)
		assert.Equal(t, 5, *vote.Choice2)
		assert.False(t, vote.IsNoOpinion)
	})

	t.Run("no opinion", func(t *testing.T) {
		vote, err := NewVote(userID, NewSelection(NoOpinion))
		require.NoError(t, err)
		assert.Equal(t, NoOpinion, vote.Choice1)
		assert.Nil(t, vote.Choice2)
		assert.True(t, vote.IsNoOpinion)
	})

	t.Run("single ordinary choice", func(t *testing.T) {
		vote, err := NewVote(userID, NewSelection(4))
		require.NoError(t, err)
		assert.Equal(t, 4, vote.Choice1)
		assert.Nil(t, vote.Choice2)
		assert.False(t, vote.IsNoOpinion)
	})

	t.Run("rejections", func(t *testing.T) {
		_, err := NewVote(userID, Selection{})
		assert.ErrorIs(t, err, ErrEmptySelection)

		_, err = NewVote(userID, NewSelection(3, NoOpinion))
		assert.ErrorIs(t, err, ErrNoOpinionCombined)

		_, err = NewVote(userID, NewSelection(0, 1, 2))
		assert.ErrorIs(t, err, ErrTooManyChoices)

		_, err = NewVote(userID, NewSelection(9))
		assert.ErrorIs(t, err, ErrInvalidChoice)
		assert.True(t, IsValidation(err))
	})
}

func TestVoteSelectionRoundTrip(t *testing.T) {
	four := 4
	assert.Equal(t, []int{NoOpinion}, (&Vote{Choice1: NoOpinion, IsNoOpinion: true}).Selection().Indices())
	assert.Equal(t, []int{1, 4}, (&Vote{Choice1: 1, Choice2: &four}).Selection().Indices())
	assert.Equal(t, []int{6}, (&Vote{Choice1: 6}).Selection().Indices())

	for _, s := range []Selection{NewSelection(0, 6), NewSelection(NoOpinion), NewSelection(3)} {
		vote, err := NewVote(uuid.New(), s)
		require.NoError(t, err)
		assert.Equal(t, s.Indices(), vote.Selection().Indices())
	}
}

func TestFormatVote(t *testing.T) {
	two := 2
	assert.Equal(t, "Theme 1, Theme 3", FormatVote(&Vote{Choice1: 0, Choice2: &two}))
	assert.Equal(t, "I have no opinion", FormatVote(&Vote{Choice1: NoOpinion, IsNoOpinion: true}))
}
