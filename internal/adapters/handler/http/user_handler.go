package http

import (
	"net/http"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetMe returns the gate's view of the session: identity, eligibility and vote status.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(r)
	if !ok {
		writeError(w, http.StatusInternalServerError, "missing session")
		return
	}

	writeJSON(w, http.StatusOK, session.Gate.Status())
}
