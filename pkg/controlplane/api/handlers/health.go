package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/davmount/pkg/controlplane/store"
	"github.com/marmos91/davmount/pkg/registry"
)

// HealthHandler handles health check API endpoints.
type HealthHandler struct {
	store    store.Store
	registry *registry.Registry
}

// NewHealthHandler creates a new HealthHandler.
// Both dependencies may be nil; the corresponding detail is omitted.
func NewHealthHandler(s store.Store, reg *registry.Registry) *HealthHandler {
	return &HealthHandler{store: s, registry: reg}
}

// Liveness handles GET /health.
// Always returns 200 while the process serves requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      map[string]string{"state": "alive"},
	})
}

// Readiness handles GET /health/ready.
// Returns 503 when the control plane store is unreachable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"state": "ready"}
	if h.registry != nil {
		data["mounts"] = h.registry.CountMounts()
	}

	if h.store != nil {
		if err := h.store.Healthcheck(r.Context()); err != nil {
			JSON(w, http.StatusServiceUnavailable, Response{
				Status:    "error",
				Timestamp: time.Now().UTC(),
				Error:     "control plane store unreachable: " + err.Error(),
			})
			return
		}
	}

	JSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}
