package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
)

// Abort acknowledges a host-side cancellation. The acknowledgment is
// advisory: an in-flight remote call is never interrupted, and any
// half-staged upload is reclaimed by the sweeper rather than rolled back
// here. The host only needs the acknowledgment to retire its own
// bookkeeping for the operation.
func (h *Handler) Abort(ctx context.Context, opts *provider.AbortOptions) error {
	if _, err := h.resolveMount(opts.MountID); err != nil {
		return err
	}

	logger.DebugCtx(ctx, "ABORT acknowledged",
		logger.KeyRequestID, opts.OperationRequestID)
	return nil
}
