package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vncsmyrnk/voice/internal/core/ports"
)

type HealthHandler struct {
	db ports.HealthChecker
}

func NewHealthHandler(db ports.HealthChecker) *HealthHandler {
	return &HealthHandler{
		db: db,
	}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		slog.Error("database ping failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
