// Package health provides shared types for health check responses.
package health

// Response represents the API health response structure.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      struct {
		State  string `json:"state"`
		Mounts int    `json:"mounts"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}
