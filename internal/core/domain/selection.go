package domain

import "slices"

// Selection is the ordered set of choices picked before a vote is submitted.
// It holds at most two indices and NoOpinion never shares it with another index.
type Selection struct {
	indices []int
}

func NewSelection(indices ...int) Selection {
	return Selection{indices: slices.Clone(indices)}
}

func (s Selection) Indices() []int {
	if len(s.indices) == 0 {
		return []int{}
	}
	return slices.Clone(s.indices)
}

func (s Selection) Len() int {
	return len(s.indices)
}

func (s Selection) Contains(idx int) bool {
	return slices.Contains(s.indices, idx)
}

func (s Selection) IsNoOpinion() bool {
	return len(s.indices) == 1 && s.indices[0] == NoOpinion
}

// Toggle applies a click on idx and returns the resulting selection.
func (s Selection) Toggle(idx int) Selection {
	switch {
	case idx == NoOpinion:
		if s.Contains(NoOpinion) {
			return Selection{}
		}
		return NewSelection(NoOpinion)
	case s.Contains(NoOpinion):
		return NewSelection(idx)
	case s.Contains(idx):
		return Selection{indices: slices.DeleteFunc(s.Indices(), func(i int) bool { return i == idx })}
	case len(s.indices) < 2:
		return Selection{indices: append(s.Indices(), idx)}
	default:
		return s
	}
}

// Disabled reports whether clicking idx would be ignored.
func (s Selection) Disabled(idx int) bool {
	return len(s.indices) >= 2 && idx != NoOpinion && !s.Contains(idx)
}

// Submittable reports whether the selection passes the ballot rules.
func (s Selection) Submittable() bool {
	return s.validate() == nil
}

func (s Selection) validate() error {
	switch {
	case len(s.indices) == 0:
		return ErrEmptySelection
	case len(s.indices) > 2:
		return ErrTooManyChoices
	case len(s.indices) == 2 && s.Contains(NoOpinion):
		return ErrNoOpinionCombined
	}
	for _, idx := range s.indices {
		if !ValidChoice(idx) {
			return ErrInvalidChoice
		}
	}
	return nil
}
