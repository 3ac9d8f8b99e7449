package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/davmount/pkg/registry"
)

// StatusHandler reports daemon-level status.
type StatusHandler struct {
	registry  *registry.Registry
	version   string
	startedAt time.Time
}

// NewStatusHandler creates a handler for the status endpoint.
func NewStatusHandler(reg *registry.Registry, version string) *StatusHandler {
	return &StatusHandler{
		registry:  reg,
		version:   version,
		startedAt: time.Now(),
	}
}

// StatusResponse is the response body for GET /api/v1/status.
type StatusResponse struct {
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Mounts      int    `json:"mounts"`
	OpenHandles int    `json:"open_handles"`
	Sessions    int    `json:"sessions"`
}

// Status handles GET /api/v1/status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	handles := 0
	sessions := 0
	for _, m := range h.registry.ListMounts() {
		for _, handle := range m.Handles() {
			handles++
			if handle.Session != nil {
				sessions++
			}
		}
	}

	OKResponse(w, StatusResponse{
		Version:     h.version,
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		Mounts:      h.registry.CountMounts(),
		OpenHandles: handles,
		Sessions:    sessions,
	})
}
