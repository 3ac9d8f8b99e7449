package handlers

import (
	"context"

	"github.com/marmos91/davmount/internal/adapter/provider"
	"github.com/marmos91/davmount/internal/logger"
	"github.com/marmos91/davmount/pkg/registry"
	"github.com/marmos91/davmount/pkg/upload"
)

// OpenFile registers an open-file handle for the host's request ID.
//
// Read opens touch nothing remote. Write opens first create the chunked
// upload session (staging collection and all); a session that cannot be
// created fails the open with no handle registered. The dispatch table
// does not flag OPENFILE as mutating, so the read-only check for write
// mode lives here.
func (h *Handler) OpenFile(ctx context.Context, opts *provider.OpenFileOptions) error {
	m, err := h.resolveMount(opts.MountID)
	if err != nil {
		return err
	}

	mode := registry.ModeRead
	var session *upload.Session

	if opts.Write {
		if !m.Writable {
			return provider.ErrReadOnlyMount
		}
		mode = registry.ModeWrite

		session, err = m.OpenUploadSession(ctx, opts.Path)
		if err != nil {
			return err
		}
	}

	if _, err := m.OpenHandle(opts.RequestID, opts.Path, mode, session); err != nil {
		// The handle table refused the request ID; the session just
		// created has no owner left, so abandon it for the sweeper.
		if session != nil {
			_ = session.Abort()
		}
		return err
	}

	logger.DebugCtx(ctx, "OPENFILE",
		logger.KeyHandle, opts.RequestID,
		logger.KeyPath, opts.Path,
		"mode", mode.String())
	return nil
}
