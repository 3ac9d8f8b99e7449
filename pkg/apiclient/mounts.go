package apiclient

import (
	"time"
)

// Mount represents a registered mount.
type Mount struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	Writable  bool      `json:"writable"`
	CreatedAt time.Time `json:"created_at"`
	Handles   int       `json:"handles"`
}

// CreateMountRequest is the request to register a mount.
type CreateMountRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Writable bool   `json:"writable"`
}

// ListMounts returns all registered mounts.
func (c *Client) ListMounts() ([]Mount, error) {
	return listResources[Mount](c, "/api/v1/mounts")
}

// GetMount returns a mount by ID.
func (c *Client) GetMount(id string) (*Mount, error) {
	return getResource[Mount](c, resourcePath("/api/v1/mounts/%s", id))
}

// CreateMount registers a new mount and connects it to the remote.
func (c *Client) CreateMount(req *CreateMountRequest) (*Mount, error) {
	return createResource[Mount](c, "/api/v1/mounts", req)
}

// DeleteMount unmounts and removes a mount by ID.
func (c *Client) DeleteMount(id string) error {
	return deleteResource(c, resourcePath("/api/v1/mounts/%s", id))
}
