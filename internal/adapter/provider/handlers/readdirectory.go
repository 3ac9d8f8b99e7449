package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/remote"
)

// ReadDirectory lists a remote collection, caches the full listing, and
// returns every child in one page. HasMore is always false: the host
// protocol supports incremental paging, but remote listings arrive whole,
// so paging would only re-slice a list already in memory.
func (h *Handler) ReadDirectory(ctx context.Context, opts *provider.ReadDirectoryOptions) (*provider.ReadDirectoryResult, error) {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return nil, err
	}

	stats, err := m.Client.List(ctx, opts.Path)
	if err != nil {
		return nil, err
	}

	// Cache the listing as one unit before projection; the cache copy
	// carries every field regardless of what this request asked for.
	entries := make([]remote.Metadata, 0, len(stats))
	for _, st := range stats {
		entries = append(entries, st.Metadata())
	}
	m.Cache.PutListing(opts.Path, entries)

	projected := make([]provider.EntryMetadata, 0, len(entries))
	for _, md := range entries {
		projected = append(projected, provider.Project(md, opts.Wants))
	}

	logger.DebugCtx(ctx, "READDIRECTORY",
		logger.KeyPath, opts.Path, logger.KeyEntries, len(projected))

	return &provider.ReadDirectoryResult{Entries: projected, HasMore: false}, nil
}
