package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/voice/internal/core/domain"
	"github.com/vncsmyrnk/voice/internal/core/ports"
)

const localTimeLayout = "2006-01-02 15:04:05"

type AdminHandler struct {
	service  ports.AdminService
	location *time.Location
	now      func() time.Time
}

func NewAdminHandler(service ports.AdminService, timezone string) *AdminHandler {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		slog.Warn("unknown timezone, using UTC+7", "timezone", timezone, "error", err)
		location = time.FixedZone("ICT", 7*60*60)
	}

	return &AdminHandler{
		service:  service,
		location: location,
		now:      time.Now,
	}
}

type votedUserResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Vote      string    `json:"vote"`
	Choices   []int     `json:"choices"`
	CreatedAt time.Time `json:"created_at"`
	LocalTime string    `json:"local_time"`
	VotedAgo  string    `json:"voted_ago"`
}

type votesResponse struct {
	Count int                 `json:"count"`
	Votes []votedUserResponse `json:"votes"`
}

// ListVotes is open to any signed-in identity.
func (h *AdminHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireIdentity(w, r); !ok {
		return
	}

	users, err := h.service.ListVotes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	now := h.now()
	resp := votesResponse{Count: len(users), Votes: make([]votedUserResponse, 0, len(users))}
	for _, u := range users {
		vote := u.Vote()
		resp.Votes = append(resp.Votes, votedUserResponse{
			UserID:    u.UserID,
			Email:     u.Email,
			FullName:  u.FullName,
			Vote:      domain.FormatVote(vote),
			Choices:   vote.Selection().Indices(),
			CreatedAt: u.CreatedAt,
			LocalTime: u.CreatedAt.In(h.location).Format(localTimeLayout),
			VotedAgo:  humanize.RelTime(u.CreatedAt, now, "ago", "from now"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
