package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// CreateDirectory creates a collection at the path. The recursive flag is
// accepted but a single MKCOL is issued either way; the dialect creates
// one level and requires the parent to exist.
func (h *Handler) CreateDirectory(ctx context.Context, opts *provider.CreateDirectoryOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	if err := m.Client.MkCol(ctx, opts.Path); err != nil {
		return err
	}

	m.Cache.Invalidate(opts.Path)

	logger.DebugCtx(ctx, "CREATEDIRECTORY", logger.KeyPath, opts.Path)
	return nil
}
