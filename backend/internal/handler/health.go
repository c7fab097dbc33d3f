package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/xhunter74/collectionmanager/shared/logger"
	"github.com/xhunter74/collectionmanager/shared/utils"
)

const readyTimeout = 2 * time.Second

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Checks names the dependencies probed by Ready, e.g. "postgres" and "items".
type Checks map[string]HealthChecker

type readyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health is a liveness probe endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Ready pings every dependency and answers 503 when one of them fails.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.health))
	for name := range h.health {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := readyResponse{Status: "ok", Checks: make(map[string]string, len(names))}
	for _, name := range names {
		if err := h.health[name].Ping(ctx); err != nil {
			logger.Log.Warn("readiness check failed", "dependency", name, "error", err)
			resp.Status = "unavailable"
			resp.Checks[name] = "unavailable"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, status, resp)
}
