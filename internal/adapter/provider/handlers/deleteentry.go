package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// DeleteEntry removes a document or collection. Collections are removed
// recursively by the remote; the cache eviction happens only after the
// remote confirms, so a failed delete never hides a still-present entry.
//
// The protocol's DELETE reports success for a missing target, but the host
// expects a distinct not-found code there, so existence is probed first.
func (h *Handler) DeleteEntry(ctx context.Context, opts *provider.DeleteEntryOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	if _, err := m.Client.Stat(ctx, opts.Path); err != nil {
		return err
	}
	if err := m.Client.Delete(ctx, opts.Path); err != nil {
		return err
	}

	m.Cache.Invalidate(opts.Path)

	logger.DebugCtx(ctx, "DELETEENTRY", logger.KeyPath, opts.Path)
	return nil
}
