package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// CopyEntry duplicates a resource, replacing anything at the target. Both
// paths are evicted: the target changed, and the source's cached parent
// listing may now be missing a sibling.
func (h *Handler) CopyEntry(ctx context.Context, opts *provider.CopyEntryOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	if err := m.Client.Copy(ctx, opts.SourcePath, opts.TargetPath); err != nil {
		return err
	}

	m.Cache.Invalidate(opts.SourcePath)
	m.Cache.Invalidate(opts.TargetPath)

	logger.DebugCtx(ctx, "COPYENTRY",
		logger.KeyOldPath, opts.SourcePath, logger.KeyNewPath, opts.TargetPath)
	return nil
}
