package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Unmount removes the mount from the registry: open write sessions are
// abandoned, the persisted record is deleted, and connected hosts receive
// the removal event from the registry's listener.
func (h *Handler) Unmount(ctx context.Context, opts *provider.UnmountOptions) error {
	return h.registry.Unmount(ctx, mounts.MountID(opts.MountID))
}
