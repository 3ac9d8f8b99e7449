// Package registry owns the set of active mounts and their runtime state.
//
// This file contains metrics-related types for observability of mount
// lifecycle and handle occupancy.
package registry

// RegistryMetrics provides observability for mount registry operations.
//
// Implementations can collect metrics about mount lifecycle operations and
// the size of the registry's runtime state. This interface is optional -
// pass nil to disable metrics collection with zero overhead.
type RegistryMetrics interface {
	// RecordMountOperation records a completed lifecycle operation.
	//
	// Parameters:
	//   - op: "mount", "unmount", or "resume"
	//   - outcome: "ok" or "error"
	RecordMountOperation(op string, outcome string)

	// RecordMounts records the current number of active mounts.
	RecordMounts(count int)

	// RecordHandles records the current number of open file handles across
	// all mounts.
	RecordHandles(count int)
}
