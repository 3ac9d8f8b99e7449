package handlers

import (
	"context"
	"fmt"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// ReadFile serves one ranged read against an open handle's path.
//
// The range goes straight to the remote; file content is never cached.
// Reads past the end of the resource return the available bytes, possibly
// none, without error. HasMore is always false: each read is a single
// response, not a stream.
func (h *Handler) ReadFile(ctx context.Context, opts *provider.ReadFileOptions) (*provider.ReadFileResult, error) {
	if opts.Offset < 0 || opts.Length < 0 {
		return nil, fmt.Errorf("invalid read range [%d, +%d)", opts.Offset, opts.Length)
	}

	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return nil, err
	}

	handle, ok := m.GetHandle(opts.RequestID)
	if !ok {
		return nil, provider.NewUnknownHandleError(opts.RequestID)
	}

	data, err := m.Client.GetRange(ctx, handle.Path, opts.Offset, opts.Length)
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "READFILE",
		logger.KeyHandle, opts.RequestID,
		logger.KeyPath, handle.Path,
		logger.KeyOffset, opts.Offset,
		logger.KeyLength, opts.Length,
		logger.KeySize, len(data))

	return &provider.ReadFileResult{Data: data, HasMore: false}, nil
}
