package handlers

import (
	"net/http"
	"time"

	"github.com/marmos91/davmount/pkg/registry"
)

// SessionHandler exposes the active upload sessions across all mounts.
type SessionHandler struct {
	registry *registry.Registry
}

// NewSessionHandler creates a handler for session endpoints.
func NewSessionHandler(reg *registry.Registry) *SessionHandler {
	return &SessionHandler{registry: reg}
}

// SessionInfo is the JSON projection of an active upload session.
type SessionInfo struct {
	ID         string    `json:"id"`
	MountID    string    `json:"mount_id"`
	MountName  string    `json:"mount_name"`
	TargetPath string    `json:"target_path"`
	State      string    `json:"state"`
	Chunks     int       `json:"chunks"`
	OpenedAt   time.Time `json:"opened_at"`
}

// List handles GET /api/v1/sessions.
//
// A session appears here while a write handle holds it open; committed and
// aborted sessions drop out as their handles close.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	result := make([]SessionInfo, 0)
	for _, m := range h.registry.ListMounts() {
		for _, handle := range m.Handles() {
			if handle.Session == nil {
				continue
			}
			result = append(result, SessionInfo{
				ID:         handle.Session.ID(),
				MountID:    string(m.ID),
				MountName:  m.Name,
				TargetPath: handle.Session.TargetPath(),
				State:      handle.Session.State().String(),
				Chunks:     len(handle.Session.Chunks()),
				OpenedAt:   handle.OpenedAt,
			})
		}
	}
	OKResponse(w, result)
}
