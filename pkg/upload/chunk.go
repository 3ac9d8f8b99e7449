package upload

import (
	"fmt"
	"strconv"
)

// CompletionObject is the name of the staging object whose MOVE out of a
// staging collection tells the server to assemble the collection's chunks
// into the MOVE destination.
const CompletionObject = ".file"

// chunkDigits is the fixed width of each encoded range bound. 20 digits
// hold any non-negative int64, so a plain string sort of chunk names
// yields numeric (start, end) order.
const chunkDigits = 20

// ChunkRange is the half-open byte range [Start, End) covered by one
// staged chunk object.
type ChunkRange struct {
	Start int64
	End   int64
}

// Len returns the number of bytes the range covers.
func (r ChunkRange) Len() int64 {
	return r.End - r.Start
}

// ChunkName encodes a half-open byte range as a staging object name: both
// bounds as zero-padded 20-digit decimals joined by a dash.
func ChunkName(start, end int64) string {
	return fmt.Sprintf("%020d-%020d", start, end)
}

// ParseChunkName decodes a staging object name produced by ChunkName.
func ParseChunkName(name string) (ChunkRange, error) {
	if len(name) != 2*chunkDigits+1 {
		return ChunkRange{}, fmt.Errorf("malformed chunk name %q: want %d characters", name, 2*chunkDigits+1)
	}
	for i := 0; i < len(name); i++ {
		if i == chunkDigits {
			if name[i] != '-' {
				return ChunkRange{}, fmt.Errorf("malformed chunk name %q: missing separator", name)
			}
			continue
		}
		if name[i] < '0' || name[i] > '9' {
			return ChunkRange{}, fmt.Errorf("malformed chunk name %q: non-digit bound", name)
		}
	}

	start, err := strconv.ParseInt(name[:chunkDigits], 10, 64)
	if err != nil {
		return ChunkRange{}, fmt.Errorf("malformed chunk name %q: %w", name, err)
	}
	end, err := strconv.ParseInt(name[chunkDigits+1:], 10, 64)
	if err != nil {
		return ChunkRange{}, fmt.Errorf("malformed chunk name %q: %w", name, err)
	}
	if end < start {
		return ChunkRange{}, fmt.Errorf("malformed chunk name %q: inverted range", name)
	}

	return ChunkRange{Start: start, End: end}, nil
}
