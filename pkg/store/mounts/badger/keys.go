package badger

import (
	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so keys carry a type prefix. The mount
// store only persists one data type, but the prefix keeps the namespace
// open for future additions without a schema migration.
//
// Data Type      Prefix   Key Format    Value Type
// ====================================================
// Mount Records  "m:"     m:<mountID>   Record (JSON)
//
// Mount IDs are fixed-width lowercase hex, so iterating the "m:" prefix
// yields records in ID order.

const (
	// prefixMount is the key prefix for mount records
	prefixMount = "m:"
)

// keyMount generates the key for a mount record.
//
// Format: "m:<mountID>"
// Example: "m:1f8b4c9d2e7a5b3c6d9e0f1a2b3c4d5e"
func keyMount(id mounts.MountID) []byte {
	return []byte(prefixMount + string(id))
}

// keyMountPrefix returns the prefix for range-scanning all mount records.
func keyMountPrefix() []byte {
	return []byte(prefixMount)
}
