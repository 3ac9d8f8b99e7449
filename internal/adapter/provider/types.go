// Package provider implements the host-facing protocol adapter: a framed
// JSON protocol over TCP through which the host runtime delivers
// filesystem-style requests (list, stat, open/read/write/close, create,
// delete, move, copy, truncate) and receives responses and unsolicited
// mount lifecycle events.
//
// The package is organized as:
//   - types.go: the closed request-kind enum and every wire record
//   - dispatch.go: the explicit kind → procedure table and the Dispatcher
//   - errors.go: the provider status vocabulary and error normalization
//   - projection.go: allow-list metadata field projection
//   - codec.go: 4-byte length-prefixed JSON framing
//   - server.go: TCP server loop, connection handling, event push
//   - handlers/: one handler per request kind
package provider

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Request Kinds
// ============================================================================

// Kind identifies a provider request type. The enum is closed: dispatch is
// an explicit table lookup, never reflection, and unknown kinds fail
// without reaching a handler.
type Kind uint32

const (
	// KindGetMetadata requests metadata for a single path.
	KindGetMetadata Kind = iota + 1

	// KindReadDirectory requests the full child listing of a directory.
	KindReadDirectory

	// KindOpenFile opens a file handle for reading or writing.
	KindOpenFile

	// KindCloseFile closes a handle, finalizing its upload session if any.
	KindCloseFile

	// KindReadFile reads a byte range through an open handle.
	KindReadFile

	// KindWriteFile writes a byte range through an open write handle.
	KindWriteFile

	// KindTruncate sets a document's length.
	KindTruncate

	// KindCreateFile creates an empty document.
	KindCreateFile

	// KindCreateDirectory creates a collection.
	KindCreateDirectory

	// KindDeleteEntry deletes a document or collection.
	KindDeleteEntry

	// KindCopyEntry copies a resource to a new path.
	KindCopyEntry

	// KindMoveEntry moves a resource to a new path.
	KindMoveEntry

	// KindAbort acknowledges the host's cancellation of an outstanding
	// operation. Advisory only; nothing in flight is interrupted.
	KindAbort

	// KindUnmount removes a mount and abandons its open sessions.
	KindUnmount
)

// String returns the procedure name used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindGetMetadata:
		return "GETMETADATA"
	case KindReadDirectory:
		return "READDIRECTORY"
	case KindOpenFile:
		return "OPENFILE"
	case KindCloseFile:
		return "CLOSEFILE"
	case KindReadFile:
		return "READFILE"
	case KindWriteFile:
		return "WRITEFILE"
	case KindTruncate:
		return "TRUNCATE"
	case KindCreateFile:
		return "CREATEFILE"
	case KindCreateDirectory:
		return "CREATEDIRECTORY"
	case KindDeleteEntry:
		return "DELETEENTRY"
	case KindCopyEntry:
		return "COPYENTRY"
	case KindMoveEntry:
		return "MOVEENTRY"
	case KindAbort:
		return "ABORT"
	case KindUnmount:
		return "UNMOUNT"
	default:
		return "UNKNOWN"
	}
}

// ============================================================================
// Frames
// ============================================================================

// Request is one host request frame. Options carries the kind-specific
// option record, decoded by the dispatch wrapper for that kind.
type Request struct {
	ID      uint64          `json:"id"`
	Kind    Kind            `json:"kind"`
	Options json.RawMessage `json:"options,omitempty"`
}

// Response is the reply frame for a request. Result is the kind-specific
// result record; absent on failure and for kinds with no payload.
type Response struct {
	ID     uint64 `json:"id"`
	Status Status `json:"status"`
	Result any    `json:"result,omitempty"`
}

// Event names pushed to connected hosts.
const (
	EventMountAdded   = "mount_added"
	EventMountRemoved = "mount_removed"
)

// Event is an unsolicited frame announcing a mount lifecycle change. Hosts
// distinguish events from responses by the presence of the "event" field.
type Event struct {
	Event string    `json:"event"`
	Mount MountInfo `json:"mount"`
}

// MountInfo is the event payload describing a mount. Removal events carry
// only ID and Name. Passwords never appear on the wire.
type MountInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	Username string `json:"username,omitempty"`
	Writable bool   `json:"writable,omitempty"`
}

// ============================================================================
// Option Records
// ============================================================================
//
// Every option record carries the mount ID under the same JSON key so the
// dispatcher can resolve the mount before decoding the rest.

// FieldWants declares which metadata fields the host wants in a response.
// Projection copies only the requested fields; see Project.
type FieldWants struct {
	Name             bool `json:"name"`
	IsDirectory      bool `json:"is_directory"`
	Size             bool `json:"size"`
	ModificationTime bool `json:"modification_time"`
	MIMEType         bool `json:"mime_type"`

	// Thumbnail is outside the provider's vocabulary; requesting it fails
	// with StatusInvalidOperation before any remote call.
	Thumbnail bool `json:"thumbnail"`
}

// GetMetadataOptions requests metadata for one path.
type GetMetadataOptions struct {
	MountID string     `json:"mount_id"`
	Path    string     `json:"path"`
	Wants   FieldWants `json:"wants"`
}

// ReadDirectoryOptions requests a directory's full child listing.
type ReadDirectoryOptions struct {
	MountID string     `json:"mount_id"`
	Path    string     `json:"path"`
	Wants   FieldWants `json:"wants"`
}

// OpenFileOptions opens a handle. RequestID is the host's open-request
// identifier; it scopes every later handle operation.
type OpenFileOptions struct {
	MountID   string `json:"mount_id"`
	RequestID int64  `json:"request_id"`
	Path      string `json:"path"`
	Write     bool   `json:"write"`
}

// CloseFileOptions closes the handle opened under RequestID.
type CloseFileOptions struct {
	MountID   string `json:"mount_id"`
	RequestID int64  `json:"request_id"`
}

// ReadFileOptions reads Length bytes at Offset through an open handle.
type ReadFileOptions struct {
	MountID   string `json:"mount_id"`
	RequestID int64  `json:"request_id"`
	Offset    int64  `json:"offset"`
	Length    int64  `json:"length"`
}

// WriteFileOptions writes one chunk through an open write handle. Data is
// base64 inside the JSON frame.
type WriteFileOptions struct {
	MountID   string `json:"mount_id"`
	RequestID int64  `json:"request_id"`
	Offset    int64  `json:"offset"`
	Data      []byte `json:"data"`
}

// TruncateOptions sets a document's length.
type TruncateOptions struct {
	MountID string `json:"mount_id"`
	Path    string `json:"path"`
	Length  int64  `json:"length"`
}

// CreateFileOptions creates an empty document.
type CreateFileOptions struct {
	MountID string `json:"mount_id"`
	Path    string `json:"path"`
}

// CreateDirectoryOptions creates a collection. Recursive is accepted for
// host compatibility; a single MKCOL is issued either way.
type CreateDirectoryOptions struct {
	MountID   string `json:"mount_id"`
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
}

// DeleteEntryOptions deletes a document or collection.
type DeleteEntryOptions struct {
	MountID string `json:"mount_id"`
	Path    string `json:"path"`
}

// CopyEntryOptions copies SourcePath to TargetPath.
type CopyEntryOptions struct {
	MountID    string `json:"mount_id"`
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
}

// MoveEntryOptions moves SourcePath to TargetPath.
type MoveEntryOptions struct {
	MountID    string `json:"mount_id"`
	SourcePath string `json:"source_path"`
	TargetPath string `json:"target_path"`
}

// AbortOptions acknowledges cancellation of the request identified by
// OperationRequestID.
type AbortOptions struct {
	MountID            string `json:"mount_id"`
	OperationRequestID uint64 `json:"operation_request_id"`
}

// UnmountOptions removes a mount.
type UnmountOptions struct {
	MountID string `json:"mount_id"`
}

// ============================================================================
// Result Records
// ============================================================================

// EntryMetadata is the projected, wire-facing metadata record. Fields are
// pointers so a response carries exactly the fields the host asked for and
// nothing else.
type EntryMetadata struct {
	Name             *string    `json:"name,omitempty"`
	IsDirectory      *bool      `json:"is_directory,omitempty"`
	Size             *int64     `json:"size,omitempty"`
	ModificationTime *time.Time `json:"modification_time,omitempty"`
	MIMEType         *string    `json:"mime_type,omitempty"`
}

// GetMetadataResult carries the projected metadata for one path.
type GetMetadataResult struct {
	Metadata EntryMetadata `json:"metadata"`
}

// ReadDirectoryResult carries a directory's projected child entries.
// Listings are always a single page; HasMore is false by contract.
type ReadDirectoryResult struct {
	Entries []EntryMetadata `json:"entries"`
	HasMore bool            `json:"has_more"`
}

// ReadFileResult carries the bytes of a ranged read. A resource shorter
// than the requested range yields fewer bytes and no error; HasMore is
// false by contract (single response, no streaming).
type ReadFileResult struct {
	Data    []byte `json:"data"`
	HasMore bool   `json:"has_more"`
}

// WriteFileResult acknowledges one accepted chunk.
type WriteFileResult struct {
	BytesWritten int64 `json:"bytes_written"`
}
