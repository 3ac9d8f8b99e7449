package provider

import (
	"errors"
	"fmt"

	"github.com/marmos91/davmount/pkg/remote"
)

// Status is the fixed error vocabulary surfaced to the host. Every request
// resolves to exactly one of these; remote failures are normalized through
// StatusOf.
type Status string

const (
	// StatusOK means the request succeeded.
	StatusOK Status = "OK"

	// StatusNotFound means the remote resource does not exist.
	StatusNotFound Status = "NOT_FOUND"

	// StatusAccessDenied means the remote refused the operation or the
	// mount is not writable.
	StatusAccessDenied Status = "ACCESS_DENIED"

	// StatusInvalidOperation means the request is outside the provider's
	// vocabulary (thumbnails).
	StatusInvalidOperation Status = "INVALID_OPERATION"

	// StatusFailed covers every other failure: unknown mounts, unknown
	// handles, malformed options, unreachable servers, and any remote
	// error without a more specific mapping.
	StatusFailed Status = "FAILED"
)

// ErrUnsupportedOperation marks requests the provider never serves, such as
// thumbnail generation. Normalizes to StatusInvalidOperation.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// ErrReadOnlyMount rejects mutations on mounts registered without write
// access. Normalizes to StatusAccessDenied; no remote call is made.
var ErrReadOnlyMount = errors.New("mount is read-only")

// ErrUnknownMount marks requests naming a mount ID the registry does not
// hold. Normalizes to StatusFailed: a missing mount is host-side
// inconsistency, not a missing remote resource.
var ErrUnknownMount = errors.New("unknown mount")

// ErrUnknownHandle marks handle operations naming an open-request ID with
// no live handle. Normalizes to StatusFailed.
var ErrUnknownHandle = errors.New("unknown file handle")

// NewUnknownMountError wraps ErrUnknownMount with the offending ID.
func NewUnknownMountError(id string) error {
	return fmt.Errorf("%w %q", ErrUnknownMount, id)
}

// NewUnknownHandleError wraps ErrUnknownHandle with the offending request ID.
func NewUnknownHandleError(requestID int64) error {
	return fmt.Errorf("%w %d", ErrUnknownHandle, requestID)
}

// StatusOf normalizes an error into the provider status vocabulary.
//
// The mapping follows the error taxonomy: remote not-found is the only
// failure the host can act on distinctly, remote forbidden and local
// read-only rejection share ACCESS_DENIED, unsupported requests are
// INVALID_OPERATION, and everything else collapses to FAILED. No retries
// happen anywhere on this path; the first failure is the answer.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrUnsupportedOperation):
		return StatusInvalidOperation
	case errors.Is(err, ErrReadOnlyMount):
		return StatusAccessDenied
	case remote.IsNotFound(err):
		return StatusNotFound
	case remote.IsForbidden(err):
		return StatusAccessDenied
	default:
		return StatusFailed
	}
}
