package upload_test

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/davmount/pkg/upload"
)

// TestChunkName_Format verifies chunk names are zero-padded to a fixed
// width so lexicographic order matches numeric order.
func TestChunkName_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start int64
		end   int64
		want  string
	}{
		{
			name:  "zero range",
			start: 0,
			end:   0,
			want:  "00000000000000000000-00000000000000000000",
		},
		{
			name:  "first chunk",
			start: 0,
			end:   262144,
			want:  "00000000000000000000-00000000000000262144",
		},
		{
			name:  "interior chunk",
			start: 262144,
			end:   524288,
			want:  "00000000000000262144-00000000000000524288",
		},
		{
			name:  "large offsets keep full width",
			start: 1 << 40,
			end:   1<<40 + 1<<20,
			want:  "00000001099511627776-00000001099512676352",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := upload.ChunkName(tt.start, tt.end)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 41, "two 20-digit bounds and a separator")
		})
	}
}

// TestChunkName_SortOrder verifies that sorting chunk names as strings
// yields the same order as sorting the ranges by start offset. The upload
// finalization on the server side relies on this.
func TestChunkName_SortOrder(t *testing.T) {
	t.Parallel()

	ranges := []upload.ChunkRange{
		{Start: 0, End: 5},
		{Start: 5, End: 512},
		{Start: 512, End: 4096},
		{Start: 4096, End: 1 << 20},
		{Start: 1 << 20, End: 1 << 30},
		{Start: 1 << 30, End: 1<<30 + 99},
	}

	names := make([]string, len(ranges))
	for i, r := range ranges {
		names[i] = upload.ChunkName(r.Start, r.End)
	}

	assert.True(t, sort.StringsAreSorted(names),
		"names of offset-ordered ranges must already be sorted: %v", names)

	// Shuffle deterministically then re-sort; order must come back.
	shuffled := []string{names[3], names[0], names[5], names[2], names[4], names[1]}
	sort.Strings(shuffled)
	assert.Equal(t, names, shuffled)
}

// TestParseChunkName_RoundTrip verifies parsing recovers the exact range
// that produced a name.
func TestParseChunkName_RoundTrip(t *testing.T) {
	t.Parallel()

	ranges := []upload.ChunkRange{
		{Start: 0, End: 0},
		{Start: 0, End: 1},
		{Start: 100, End: 250},
		{Start: 1 << 40, End: 1<<40 + 1},
	}

	for _, want := range ranges {
		t.Run(fmt.Sprintf("%d-%d", want.Start, want.End), func(t *testing.T) {
			t.Parallel()

			got, err := upload.ParseChunkName(upload.ChunkName(want.Start, want.End))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

// TestParseChunkName_Rejects verifies malformed names are refused rather
// than silently mis-parsed.
func TestParseChunkName_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "too short", input: "0-1"},
		{name: "unpadded bounds", input: "100-250"},
		{name: "too long", input: "000000000000000000000-000000000000000000001"},
		{name: "separator misplaced", input: "0000000000000000000-000000000000000000001"},
		{name: "missing separator", input: "0000000000000000000000000000000000000001x"},
		{name: "non-digit in start", input: "0000000000000000a100-00000000000000000250"},
		{name: "non-digit in end", input: "00000000000000000100-000000000000000002b0"},
		{name: "completion object", input: upload.CompletionObject},
		{name: "inverted range", input: upload.ChunkName(250, 100)},
		{name: "overflowing bound", input: "99999999999999999999-99999999999999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := upload.ParseChunkName(tt.input)
			assert.Error(t, err, "input %q", tt.input)
		})
	}
}

// TestChunkRange_Len verifies the range length helper.
func TestChunkRange_Len(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(0), upload.ChunkRange{Start: 5, End: 5}.Len())
	assert.Equal(t, int64(150), upload.ChunkRange{Start: 100, End: 250}.Len())
}
