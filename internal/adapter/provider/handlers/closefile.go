package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// CloseFile discards the handle for an open request, finalizing the
// upload session of a write handle first.
//
// The handle is removed from the table no matter how finalization goes:
// the host considers the open request over either way, and a retried
// close against a dropped handle would only report unknown-handle. A
// failed finalize surfaces as an error with the target untouched; the
// session's staging collection stays behind for the sweeper.
func (h *Handler) CloseFile(ctx context.Context, opts *provider.CloseFileOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	handle, ok := m.CloseHandle(opts.RequestID)
	if !ok {
		return provider.NewUnknownHandleError(opts.RequestID)
	}

	if handle.Session == nil {
		logger.DebugCtx(ctx, "CLOSEFILE", logger.KeyHandle, opts.RequestID, logger.KeyPath, handle.Path)
		return nil
	}

	if err := handle.Session.Close(ctx); err != nil {
		logger.WarnCtx(ctx, "upload finalize failed",
			logger.KeyHandle, opts.RequestID,
			logger.KeyPath, handle.Path,
			logger.KeySession, handle.Session.ID(),
			logger.Err(err))
		return err
	}

	// The commit replaced the target; evict before the host re-reads it.
	m.Cache.Invalidate(handle.Path)

	logger.DebugCtx(ctx, "CLOSEFILE committed",
		logger.KeyHandle, opts.RequestID,
		logger.KeyPath, handle.Path,
		logger.KeySession, handle.Session.ID())
	return nil
}
