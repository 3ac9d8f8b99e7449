package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// MoveEntry renames a resource, replacing anything at the target. Both
// the vacated source and the new target are evicted.
func (h *Handler) MoveEntry(ctx context.Context, opts *provider.MoveEntryOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	if err := m.Client.Move(ctx, opts.SourcePath, opts.TargetPath); err != nil {
		return err
	}

	m.Cache.Invalidate(opts.SourcePath)
	m.Cache.Invalidate(opts.TargetPath)

	logger.DebugCtx(ctx, "MOVEENTRY",
		logger.KeyOldPath, opts.SourcePath, logger.KeyNewPath, opts.TargetPath)
	return nil
}
