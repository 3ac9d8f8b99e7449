package badger

import (
	"encoding/json"
	"fmt"

	"github.com/marmos91/davmount/pkg/store/mounts"
)

// Records are stored as JSON. They are small, written rarely, and read in
// bulk only at startup, so debuggability beats compactness here: a record
// can be inspected with badger's CLI tooling without a decoder.

// encodeRecord serializes a mount record to JSON bytes.
func encodeRecord(rec *mounts.Record) ([]byte, error) {
	bytes, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mount record: %w", err)
	}
	return bytes, nil
}

// decodeRecord deserializes a mount record from JSON bytes.
func decodeRecord(bytes []byte) (*mounts.Record, error) {
	var rec mounts.Record
	if err := json.Unmarshal(bytes, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode mount record: %w", err)
	}
	return &rec, nil
}
