package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// CreateFile creates an empty document at the path. Content arrives later
// through a write-mode open; creation itself is a zero-byte upload.
func (h *Handler) CreateFile(ctx context.Context, opts *provider.CreateFileOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	if err := m.Client.Put(ctx, opts.Path, nil); err != nil {
		return err
	}

	m.Cache.Invalidate(opts.Path)

	logger.DebugCtx(ctx, "CREATEFILE", logger.KeyPath, opts.Path)
	return nil
}
