package handlers

import (
	"context"
	"fmt"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// WriteFile stages one chunk on an open write handle's upload session.
//
// Chunks may arrive out of order and concurrently; the session names each
// by its byte range, so arrival order never matters. The target path is
// evicted from the cache after every staged chunk - its remote size and
// mtime are already unreliable once an upload is in flight.
func (h *Handler) WriteFile(ctx context.Context, opts *provider.WriteFileOptions) (*provider.WriteFileResult, error) {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return nil, err
	}

	handle, ok := m.GetHandle(opts.RequestID)
	if !ok {
		return nil, provider.NewUnknownHandleError(opts.RequestID)
	}
	if handle.Session == nil {
		return nil, fmt.Errorf("open request %d is a read handle; write refused", opts.RequestID)
	}

	if err := handle.Session.Write(ctx, opts.Offset, opts.Data); err != nil {
		return nil, err
	}

	m.Cache.Invalidate(handle.Path)

	logger.DebugCtx(ctx, "WRITEFILE",
		logger.KeyHandle, opts.RequestID,
		logger.KeyPath, handle.Path,
		logger.KeyOffset, opts.Offset,
		logger.KeySize, len(opts.Data))

	return &provider.WriteFileResult{BytesWritten: int64(len(opts.Data))}, nil
}
