package apiclient

import (
	"time"
)

// Session represents an active chunked upload session.
type Session struct {
	ID         string    `json:"id"`
	MountID    string    `json:"mount_id"`
	MountName  string    `json:"mount_name"`
	TargetPath string    `json:"target_path"`
	State      string    `json:"state"`
	Chunks     int       `json:"chunks"`
	OpenedAt   time.Time `json:"opened_at"`
}

// ListSessions returns all active upload sessions across mounts.
func (c *Client) ListSessions() ([]Session, error) {
	return listResources[Session](c, "/api/v1/sessions")
}
