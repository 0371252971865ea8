package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/garoui/electricite-be/internal/http/respond"
	"github.com/garoui/electricite-be/internal/lib/sl"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and database reachability.
type HealthHandler struct {
	startedAt time.Time
	db        Pinger
	log       *slog.Logger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, db Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, db: db, log: log}
}

// Register wires the handler into a router.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/ping", h.ping)
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	payload := map[string]string{
		"status":   "ok",
		"database": "ok",
		"uptime":   time.Since(h.startedAt).Truncate(time.Second).String(),
	}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		h.log.Warn("health check: database unreachable", sl.Err(err))
		payload["status"] = "degraded"
		payload["database"] = "unreachable"
		status = http.StatusServiceUnavailable
	}
	respond.JSON(w, r, status, "health", payload)
}

func (h *HealthHandler) ping(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, "pong", nil)
}
