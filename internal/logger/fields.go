package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so logs can be
// aggregated and queried by mount, path, or request.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// Provider Requests
	// ========================================================================
	KeyProcedure = "procedure"  // Request kind: GETMETADATA, READDIRECTORY, etc.
	KeyRequestID = "request_id" // Provider frame request ID
	KeyStatus    = "status"     // Provider status code (OK, NOT_FOUND, ...)
	KeyHandle    = "handle"     // Open-file handle (open request identifier)
	KeyHandles   = "handles"    // Open-handle count

	// ========================================================================
	// Mounts
	// ========================================================================
	KeyMount    = "mount"     // Mount ID
	KeyName     = "name"      // Mount display name
	KeyURL      = "url"       // Remote server URL
	KeyUsername = "username"  // Remote account username
	KeyWritable = "writable"  // Mount writable flag
	KeyMounts   = "mounts"    // Number of mounts
	KeyResumed  = "resumed"   // Number of mounts resumed
	KeyFailed   = "failed"    // Number of failures in a batch operation

	// ========================================================================
	// Remote Operations
	// ========================================================================
	KeyPath    = "path"     // Remote resource path
	KeyOldPath = "old_path" // Source path for move/copy
	KeyNewPath = "new_path" // Destination path for move/copy
	KeySize    = "size"     // Resource size in bytes
	KeyOffset  = "offset"   // Byte offset for ranged reads and chunk writes
	KeyLength  = "length"   // Byte count requested
	KeyEntries = "entries"  // Number of directory entries

	// ========================================================================
	// Upload Sessions
	// ========================================================================
	KeySession    = "session"     // Upload session ID
	KeyStagingDir = "staging_dir" // Staging collection path
	KeyChunk      = "chunk"       // Chunk object name
	KeyChunks     = "chunks"      // Number of chunks in a session
	KeyState      = "state"       // Session state
	KeySwept      = "swept"       // Number of staging collections reclaimed

	// ========================================================================
	// Metadata Cache
	// ========================================================================
	KeyCacheHit = "cache_hit" // Whether the cache satisfied the request
	KeyListings = "listings"  // Cached listing count
	KeyCached   = "cached"    // Cached entry count

	// ========================================================================
	// Stores & Control Plane
	// ========================================================================
	KeyStoreType  = "store_type" // Mount store type: memory, badger, postgres
	KeyClientAddr = "client"     // Connected host address
	KeyListen     = "listen"     // Listen address of a server
	KeyUser       = "user"       // Control-plane username

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
)

// Err returns a slog attribute for an error value.
// Safe to call with nil; produces an empty string attribute.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// Path returns a slog attribute for a remote path.
func Path(path string) slog.Attr {
	return slog.String(KeyPath, path)
}

// Mount returns a slog attribute for a mount ID. Accepts any string-like
// mount identifier so packages need not import the registry.
func Mount(id fmt.Stringer) slog.Attr {
	return slog.String(KeyMount, id.String())
}

// MountString returns a slog attribute for a mount ID already in string form.
func MountString(id string) slog.Attr {
	return slog.String(KeyMount, id)
}
