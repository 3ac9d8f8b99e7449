package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// GetMetadata returns the metadata of a single remote entry, projected to
// the requested fields.
//
// Thumbnail requests fail immediately: the remote dialect has no thumbnail
// surface, and the host treats the distinct error code as "stop asking".
// The cache satisfies the request only when both presence flags agree —
// metadata observed solely as a directory-listing side effect is not
// served until a direct stat has confirmed the entry on its own. Anything
// less cached goes to the remote.
func (h *Handler) GetMetadata(ctx context.Context, opts *provider.GetMetadataOptions) (*provider.GetMetadataResult, error) {
	if opts.Wants.Thumbnail {
		logger.DebugCtx(ctx, "GETMETADATA thumbnail refused", logger.KeyPath, opts.Path)
		return nil, provider.ErrUnsupportedOperation
	}

	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return nil, err
	}

	if res := m.Cache.Get(opts.Path); res.ListingPresent && res.EntryPresent {
		logger.DebugCtx(ctx, "GETMETADATA served from cache", logger.KeyPath, opts.Path)
		return &provider.GetMetadataResult{Metadata: provider.Project(res.Entry, opts.Wants)}, nil
	}

	st, err := m.Client.Stat(ctx, opts.Path)
	if err != nil {
		return nil, err
	}

	md := st.Metadata()
	m.Cache.PutEntry(opts.Path, md)

	logger.DebugCtx(ctx, "GETMETADATA", logger.KeyPath, opts.Path, logger.KeySize, md.Size)
	return &provider.GetMetadataResult{Metadata: provider.Project(md, opts.Wants)}, nil
}
