package apiclient

// Status reports daemon-level state.
type Status struct {
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	Mounts      int    `json:"mounts"`
	OpenHandles int    `json:"open_handles"`
	Sessions    int    `json:"sessions"`
}

// GetStatus returns the daemon status.
func (c *Client) GetStatus() (*Status, error) {
	return getResource[Status](c, "/api/v1/status")
}
