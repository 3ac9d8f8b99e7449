package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// MountHandler handles mount management API endpoints.
type MountHandler struct {
	registry *registry.Registry
}

// NewMountHandler creates a handler for mount endpoints.
func NewMountHandler(reg *registry.Registry) *MountHandler {
	return &MountHandler{registry: reg}
}

// MountRequest is the request body for POST /api/v1/mounts.
type MountRequest struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Writable bool   `json:"writable"`
}

// MountInfo is the JSON projection of a mount. Credentials never travel in
// API responses.
type MountInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Username  string    `json:"username"`
	Writable  bool      `json:"writable"`
	CreatedAt time.Time `json:"created_at"`
	Handles   int       `json:"handles"`
}

// mountToInfo converts an active mount to its API representation.
func mountToInfo(m *registry.Mount) MountInfo {
	return MountInfo{
		ID:        string(m.ID),
		Name:      m.Name,
		URL:       m.URL,
		Username:  m.Username,
		Writable:  m.Writable,
		CreatedAt: m.CreatedAt,
		Handles:   m.HandleCount(),
	}
}

// List handles GET /api/v1/mounts.
func (h *MountHandler) List(w http.ResponseWriter, r *http.Request) {
	active := h.registry.ListMounts()
	result := make([]MountInfo, 0, len(active))
	for _, m := range active {
		result = append(result, mountToInfo(m))
	}
	OKResponse(w, result)
}

// Create handles POST /api/v1/mounts.
//
// Mount identity is deterministic on (URL, username); posting a mount that
// already exists returns 409 Conflict with the existing ID in the payload.
func (h *MountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req MountRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	cfg := registry.MountConfig{
		Name:     req.Name,
		URL:      req.URL,
		Username: req.Username,
		Password: req.Password,
		Writable: req.Writable,
	}
	if err := cfg.Validate(); err != nil {
		ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	id := cfg.ID()
	if existing, ok := h.registry.GetMount(id); ok {
		ErrorResponseWithData(w, http.StatusConflict, "mount already exists",
			map[string]string{"id": string(existing.ID)})
		return
	}

	m, err := h.registry.Mount(r.Context(), cfg)
	if err != nil {
		ErrorResponse(w, http.StatusBadGateway, "failed to mount remote: "+err.Error())
		return
	}

	CreatedResponse(w, mountToInfo(m))
}

// Get handles GET /api/v1/mounts/{id}.
func (h *MountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	m, ok := h.registry.GetMount(mounts.MountID(id))
	if !ok {
		ErrorResponse(w, http.StatusNotFound, "mount not found")
		return
	}

	OKResponse(w, mountToInfo(m))
}

// Delete handles DELETE /api/v1/mounts/{id} (unmount).
func (h *MountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, ok := h.registry.GetMount(mounts.MountID(id)); !ok {
		ErrorResponse(w, http.StatusNotFound, "mount not found")
		return
	}

	if err := h.registry.Unmount(r.Context(), mounts.MountID(id)); err != nil {
		ErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	NoContent(w)
}
