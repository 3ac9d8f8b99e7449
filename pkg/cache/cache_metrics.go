// Package cache implements the per-mount metadata cache.
//
// This file contains metrics-related types for observability of cache
// lookups and occupancy.
package cache

// CacheMetrics provides observability for metadata cache operations.
//
// Implementations can use this interface to collect metrics about lookup
// hit rates and sub-cache occupancy. This is optional - if not provided,
// metrics collection is skipped.
//
// Example implementations:
//   - Prometheus metrics
//   - In-memory counters for testing
type CacheMetrics interface {
	// RecordLookup records a cache lookup. A lookup counts as a hit only
	// when both the listing and the direct-stat entry were present.
	RecordLookup(hit bool)

	// RecordSizes records the current number of cached listings and entries.
	RecordSizes(listings, entries int)
}
