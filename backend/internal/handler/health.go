package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/portal-dev/portal/shared/api"
	"github.com/portal-dev/portal/shared/logger"
	"github.com/portal-dev/portal/shared/utils"
)

const readyTimeout = 2 * time.Second

// Health answers as long as the process serves requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// Ready fails with 503 while the posts and accounts database does not answer.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.health.Ping(ctx); err != nil {
		logger.Log.Warn("readiness check failed", "error", err)
		utils.WriteJSON(w, http.StatusServiceUnavailable, api.HealthResponse{Status: "unavailable", Database: "unreachable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Database: "ok"})
}
