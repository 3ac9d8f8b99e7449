// Package handlers implements the provider procedures: one file per
// request kind, routed through the provider dispatch table.
//
// Handlers resolve their own mount from the registry, so each is usable
// and testable on its own; the dispatcher's pre-resolution only serves
// its read-only short-circuit. All remote work is awaited before any
// cache eviction, so a handler's success response never precedes its
// side effects.
package handlers

import (
	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Handler implements provider.Handlers against the mount registry.
type Handler struct {
	registry *registry.Registry
}

// Compile-time check that Handler covers the full procedure surface.
var _ provider.Handlers = (*Handler)(nil)

// New creates the handler set over the registry.
func New(reg *registry.Registry) *Handler {
	return &Handler{registry: reg}
}

// resolveMount looks up the mount a request addresses.
func (h *Handler) resolveMount(mountID string) (*registry.Mount, error) {
	m, ok := h.registry.GetMount(mounts.MountID(mountID))
	if !ok {
		return nil, provider.NewUnknownMountError(mountID)
	}
	return m, nil
}
