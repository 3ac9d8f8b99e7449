// Package upload implements chunked upload sessions staged on the remote
// server.
//
// This file contains metrics-related types for observability of session
// lifecycle and chunk throughput.
package upload

import "time"

// UploadMetrics provides observability for upload session operations.
//
// Implementations can collect metrics about session lifecycle, chunk
// throughput, and sweeper activity. This interface is optional - pass nil
// to disable metrics collection with zero overhead.
type UploadMetrics interface {
	// RecordSessionOpened records a successfully opened session.
	RecordSessionOpened()

	// RecordSessionClosed records a session leaving the active set.
	//
	// Parameters:
	//   - outcome: "committed" or "aborted"
	//   - duration: Session lifetime from open to close
	RecordSessionClosed(outcome string, duration time.Duration)

	// RecordChunk records one staged chunk and its payload size.
	RecordChunk(bytes int)

	// RecordActiveSessions records the current number of active sessions.
	RecordActiveSessions(count int)

	// RecordSweep records a completed sweeper pass and how many stale
	// staging areas it removed.
	RecordSweep(swept int)
}
