package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for provider and remote operations.
// These follow OpenTelemetry semantic conventions where applicable.
// Protocol-agnostic keys use "fs." prefix, component-specific use their own prefix.
const (
	// ========================================================================
	// Client attributes
	// ========================================================================
	AttrClientAddr = "client.address"

	// ========================================================================
	// Provider protocol attributes
	// ========================================================================
	AttrProcedure = "provider.procedure"  // GETMETADATA, READDIRECTORY, etc.
	AttrRequestID = "provider.request_id" // Frame request ID
	AttrStatus    = "provider.status"     // Response status (OK, NOT_FOUND, ...)
	AttrHandle    = "provider.handle"     // Open-file handle identifier

	// ========================================================================
	// Mount attributes
	// ========================================================================
	AttrMountID   = "mount.id"
	AttrMountName = "mount.name"

	// ========================================================================
	// Filesystem attributes (shared by provider and remote spans)
	// ========================================================================
	AttrPath    = "fs.path"    // Remote resource path
	AttrOldPath = "fs.old_path"
	AttrNewPath = "fs.new_path"
	AttrOffset  = "fs.offset"  // I/O offset
	AttrLength  = "fs.length"  // Byte count requested
	AttrSize    = "fs.size"    // Resource size
	AttrEntries = "fs.entries" // Directory entry count

	// ========================================================================
	// Remote document server attributes
	// ========================================================================
	AttrRemoteMethod = "remote.method" // PROPFIND, GET, PUT, MKCOL, ...
	AttrRemoteDepth  = "remote.depth"  // PROPFIND depth header
	AttrHTTPStatus   = "http.response.status_code"

	// ========================================================================
	// Cache attributes
	// ========================================================================
	AttrCacheHit = "cache.hit"

	// ========================================================================
	// Upload session attributes
	// ========================================================================
	AttrSession = "upload.session"
	AttrChunk   = "upload.chunk"
	AttrState   = "upload.state"
)

// Span names for operations.
// Format: <component>.<operation>
const (
	// Root span for provider request processing
	SpanProviderRequest = "provider.request"

	// Remote document server calls
	SpanRemotePropfind = "remote.PROPFIND"
	SpanRemoteGet      = "remote.GET"
	SpanRemotePut      = "remote.PUT"
	SpanRemoteMkcol    = "remote.MKCOL"
	SpanRemoteDelete   = "remote.DELETE"
	SpanRemoteCopy     = "remote.COPY"
	SpanRemoteMove     = "remote.MOVE"

	// Internal operations
	SpanCacheLookup     = "cache.lookup"
	SpanCacheInvalidate = "cache.invalidate"
	SpanUploadOpen      = "upload.open"
	SpanUploadAppend    = "upload.append"
	SpanUploadAssemble  = "upload.assemble"
	SpanUploadAbort     = "upload.abort"
	SpanRegistryMount   = "registry.mount"
	SpanRegistryUnmount = "registry.unmount"
	SpanRegistryResume  = "registry.resume"
)

// ClientAddr returns an attribute for full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// Procedure returns an attribute for provider procedure name
func Procedure(name string) attribute.KeyValue {
	return attribute.String(AttrProcedure, name)
}

// RequestID returns an attribute for the provider frame request ID
func RequestID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrRequestID, int64(id))
}

// Status returns an attribute for the response status
func Status(status string) attribute.KeyValue {
	return attribute.String(AttrStatus, status)
}

// Handle returns an attribute for an open-file handle identifier
func Handle(id int64) attribute.KeyValue {
	return attribute.Int64(AttrHandle, id)
}

// MountID returns an attribute for the mount identifier
func MountID(id string) attribute.KeyValue {
	return attribute.String(AttrMountID, id)
}

// MountName returns an attribute for the mount display name
func MountName(name string) attribute.KeyValue {
	return attribute.String(AttrMountName, name)
}

// FSPath returns an attribute for a remote resource path
func FSPath(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

// FSOldPath returns an attribute for the source path of a move or copy
func FSOldPath(path string) attribute.KeyValue {
	return attribute.String(AttrOldPath, path)
}

// FSNewPath returns an attribute for the destination path of a move or copy
func FSNewPath(path string) attribute.KeyValue {
	return attribute.String(AttrNewPath, path)
}

// FSOffset returns an attribute for an I/O offset
func FSOffset(offset int64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, offset)
}

// FSLength returns an attribute for a byte count
func FSLength(length int64) attribute.KeyValue {
	return attribute.Int64(AttrLength, length)
}

// FSSize returns an attribute for a resource size
func FSSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

// FSEntries returns an attribute for a directory entry count
func FSEntries(n int) attribute.KeyValue {
	return attribute.Int(AttrEntries, n)
}

// RemoteMethod returns an attribute for the remote HTTP method
func RemoteMethod(method string) attribute.KeyValue {
	return attribute.String(AttrRemoteMethod, method)
}

// RemoteDepth returns an attribute for a PROPFIND depth
func RemoteDepth(depth string) attribute.KeyValue {
	return attribute.String(AttrRemoteDepth, depth)
}

// HTTPStatus returns an attribute for a remote HTTP status code
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// CacheHit returns an attribute for cache hit indicator
func CacheHit(hit bool) attribute.KeyValue {
	return attribute.Bool(AttrCacheHit, hit)
}

// Session returns an attribute for an upload session ID
func Session(id string) attribute.KeyValue {
	return attribute.String(AttrSession, id)
}

// Chunk returns an attribute for a staged chunk name
func Chunk(name string) attribute.KeyValue {
	return attribute.String(AttrChunk, name)
}

// State returns an attribute for an upload session state
func State(state string) attribute.KeyValue {
	return attribute.String(AttrState, state)
}

// StartProviderSpan starts a span for a provider procedure.
// This is a convenience function that sets common attributes.
func StartProviderSpan(ctx context.Context, procedure, mountID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Procedure(procedure),
	}
	if mountID != "" {
		allAttrs = append(allAttrs, MountID(mountID))
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "provider."+procedure, trace.WithAttributes(allAttrs...))
}

// StartRemoteSpan starts a span for a remote document server call.
func StartRemoteSpan(ctx context.Context, method, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		RemoteMethod(method),
		FSPath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "remote."+method, trace.WithAttributes(allAttrs...))
}

// StartCacheSpan starts a span for a metadata cache operation.
func StartCacheSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return StartSpan(ctx, "cache."+operation, trace.WithAttributes(attrs...))
}

// StartUploadSpan starts a span for an upload session operation.
func StartUploadSpan(ctx context.Context, operation string, session string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		Session(session),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "upload."+operation, trace.WithAttributes(allAttrs...))
}
