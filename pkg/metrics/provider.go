package metrics

import (
	"time"
)

// ProviderMetrics provides observability for provider adapter operations.
//
// Implementations can collect metrics about provider requests, connection
// lifecycle, and change events. This interface is optional - if not provided
// to the provider server, a no-op implementation is used with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics := prometheus.NewProviderMetrics()
//	server := provider.NewServer(config, dispatcher, metrics)
//
//	// Without metrics (no-op)
//	server := provider.NewServer(config, dispatcher, nil)
type ProviderMetrics interface {
	// RecordRequest records a completed provider request with its procedure
	// name, mount, duration, and outcome.
	//
	// Parameters:
	//   - procedure: Procedure name (e.g., "GETMETADATA", "READDIRECTORY")
	//   - mount: Mount identifier, empty for mount-independent procedures
	//   - duration: Time taken to process the request
	//   - status: Wire status of the response (e.g., "OK", "NOT_FOUND")
	RecordRequest(procedure string, mount string, duration time.Duration, status string)

	// RecordRequestStart increments the in-flight request counter.
	// Should be called when starting to process a request.
	RecordRequestStart(procedure string)

	// RecordRequestEnd decrements the in-flight request counter.
	// Should be called when request processing completes.
	RecordRequestEnd(procedure string)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()

	// RecordEvent records a lifecycle event pushed to connected hosts.
	//
	// Parameters:
	//   - kind: Event kind (e.g., "mount_added", "mount_removed")
	RecordEvent(kind string)
}

// NewNoopProviderMetrics returns a ProviderMetrics implementation that
// discards everything. Used by the provider server when no metrics are
// configured.
func NewNoopProviderMetrics() ProviderMetrics {
	return noopProviderMetrics{}
}

// noopProviderMetrics is a no-op implementation of ProviderMetrics with zero overhead.
type noopProviderMetrics struct{}

func (noopProviderMetrics) RecordRequest(procedure string, mount string, duration time.Duration, status string) {
}
func (noopProviderMetrics) RecordRequestStart(procedure string) {}
func (noopProviderMetrics) RecordRequestEnd(procedure string)   {}
func (noopProviderMetrics) SetActiveConnections(count int32)    {}
func (noopProviderMetrics) RecordConnectionAccepted()           {}
func (noopProviderMetrics) RecordConnectionClosed()             {}
func (noopProviderMetrics) RecordEvent(kind string)             {}
