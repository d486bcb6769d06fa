package domain

import "time"

const (
	ChoiceCount = 8
	NoOpinion   = 7
)

type Choice struct {
	Index      int    `json:"index"`
	Label      string `json:"label"`
	PreviewURL string `json:"preview_url,omitempty"`
}

var choices = [ChoiceCount]Choice{
	{Index: 0, Label: "Theme 1", PreviewURL: "https://unipix-project.netlify.app/index-two"},
	{Index: 1, Label: "Theme 2", PreviewURL: "https://templateup.site/eduqe/"},
	{Index: 2, Label: "Theme 3", PreviewURL: "https://fse.jegtheme.com/schwimm/"},
	{Index: 3, Label: "Theme 4", PreviewURL: "https://ninzio.com/edukul/"},
	{Index: 4, Label: "Theme 5", PreviewURL: "https://themazine.com/newwp/edutech/"},
	{Index: 5, Label: "Theme 6", PreviewURL: "https://www.wordpress.codeinsolution.com/dricademy/"},
	{Index: 6, Label: "Theme 7", PreviewURL: "https://ongkorn3.seeddemo.com/"},
	{Index: NoOpinion, Label: "I have no opinion"},
}

// Choices returns a copy of the fixed choice set in display order.
func Choices() []Choice {
	out := make([]Choice, ChoiceCount)
	copy(out, choices[:])
	return out
}

func ValidChoice(idx int) bool {
	return idx >= 0 && idx < ChoiceCount
}

func ChoiceLabel(idx int) string {
	if !ValidChoice(idx) {
		return ""
	}
	return choices[idx].Label
}

type Poll struct {
	Title            string     `json:"title"`
	Choices          []Choice   `json:"choices"`
	MaxSelections    int        `json:"max_selections"`
	ClosesAt         *time.Time `json:"closes_at,omitempty"`
	SecondsRemaining *int64     `json:"seconds_remaining,omitempty"`
}

// NewPoll describes the poll as seen at now. The closing time is informational only.
func NewPoll(title string, closesAt *time.Time, now time.Time) Poll {
	p := Poll{
		Title:         title,
		Choices:       Choices(),
		MaxSelections: 2,
		ClosesAt:      closesAt,
	}
	if closesAt != nil {
		remaining := int64(closesAt.Sub(now).Seconds())
		if remaining < 0 {
			remaining = 0
		}
		p.SecondsRemaining = &remaining
	}
	return p
}
