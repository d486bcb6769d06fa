package http

import (
	"net/http"

	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{
		service: service,
	}
}

func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.GetPoll(r.Context()))
}
