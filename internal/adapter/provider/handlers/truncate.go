package handlers

import (
	"context"
	"fmt"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// Truncate resizes a remote document by full read-modify-write: fetch the
// whole resource, cut it down or zero-pad it to the requested length, and
// upload the result. The remote protocol has no partial-truncation
// primitive, so the round trip is unavoidable; fine for documents, wrong
// tool for anything huge.
func (h *Handler) Truncate(ctx context.Context, opts *provider.TruncateOptions) error {
	if opts.Length < 0 {
		return fmt.Errorf("negative truncate length %d", opts.Length)
	}

	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	content, err := m.Client.Get(ctx, opts.Path)
	if err != nil {
		return err
	}

	switch {
	case int64(len(content)) > opts.Length:
		content = content[:opts.Length]
	case int64(len(content)) < opts.Length:
		content = append(content, make([]byte, opts.Length-int64(len(content)))...)
	}

	if err := m.Client.Put(ctx, opts.Path, content); err != nil {
		return err
	}

	m.Cache.Invalidate(opts.Path)

	logger.DebugCtx(ctx, "TRUNCATE",
		logger.KeyPath, opts.Path, logger.KeyLength, opts.Length)
	return nil
}
