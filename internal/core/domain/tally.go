package domain

type Tally struct {
	Counts [ChoiceCount]int64 `json:"counts"`
	Total  int64              `json:"total"`
	Max    int64              `json:"max"`
}

// NewTally fills missing choices with zero. Max is floored at 1 so it can divide bar widths.
func NewTally(counts map[int]int64) Tally {
	t := Tally{Max: 1}
	for idx, count := range counts {
		if !ValidChoice(idx) {
			continue
		}
		t.Counts[idx] = count
	}
	for _, count := range t.Counts {
		t.Total += count
		if count > t.Max {
			t.Max = count
		}
	}
	return t
}

func (t Tally) WidthPercent(idx int) float64 {
	if !ValidChoice(idx) {
		return 0
	}
	return float64(t.Counts[idx]) / float64(t.Max) * 100
}
