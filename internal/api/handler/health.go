package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/videocollect/internal/api/response"
)

// Checker reports whether the backing stores are reachable
type Checker interface {
	Health(ctx context.Context) error
}

// HealthHandler reports backend availability
type HealthHandler struct {
	checker Checker
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker Checker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		logger:  logger,
	}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.checker.Health(r.Context()); err != nil {
		h.logger.Warn("health check failed", "error", err)
		response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "unavailable", Error: err.Error()})
		return
	}
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
