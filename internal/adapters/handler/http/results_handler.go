package http

import (
	"net/http"

	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type ResultsHandler struct {
	tally ports.TallyService
}

func NewResultsHandler(tally ports.TallyService) *ResultsHandler {
	return &ResultsHandler{
		tally: tally,
	}
}

type resultBar struct {
	Index        int     `json:"index"`
	Label        string  `json:"label"`
	Count        int64   `json:"count"`
	WidthPercent float64 `json:"width_percent"`
}

type resultsResponse struct {
	Total int64       `json:"total"`
	Bars  []resultBar `json:"bars"`
}

func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	tally, err := h.tally.Fetch(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newResultsResponse(tally))
}

func newResultsResponse(tally *domain.Tally) resultsResponse {
	resp := resultsResponse{Total: tally.Total, Bars: make([]resultBar, 0, domain.ChoiceCount)}
	for _, choice := range domain.Choices() {
		resp.Bars = append(resp.Bars, resultBar{
			Index:        choice.Index,
			Label:        choice.Label,
			Count:        tally.Counts[choice.Index],
			WidthPercent: tally.WidthPercent(choice.Index),
		})
	}
	return resp
}
