package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/services"
)

type BallotHandler struct{}

func NewBallotHandler() *BallotHandler {
	return &BallotHandler{}
}

type submitResponse struct {
	Result *services.SubmitResult `json:"result"`
	Ballot services.BallotView    `json:"ballot"`
}

func (h *BallotHandler) GetBallot(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "missing session")
		return
	}

	writeJSON(w, http.StatusOK, session.Ballot.View())
}

func (h *BallotHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "missing session")
		return
	}

	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidChoice.Error())
		return
	}

	if _, err := session.Ballot.Toggle(idx); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Ballot.View())
}

// Submit casts the vote. A vote already stored for the identity is not an error: the response
// reports duplicate and the ballot shows the stored vote.
func (h *BallotHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, _, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	result, err := session.Ballot.Submit(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if result.Superseded {
		writeError(w, http.StatusConflict, "the signed-in account changed while the vote was being submitted")
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, submitResponse{Result: result, Ballot: session.Ballot.View()})
}
