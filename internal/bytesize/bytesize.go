// Package bytesize parses human-readable byte sizes from configuration.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// ByteSize is a size in bytes that unmarshals from strings like "16Mi",
// "500KB", or plain numbers.
//
// Accepted forms:
//   - plain integers: 1024, 16777216
//   - binary units (×1024): Ki/KiB, Mi/MiB, Gi/GiB, Ti/TiB
//   - decimal units (×1000): K/KB, M/MB, G/GB, T/TB
//   - an explicit B suffix
//
// Units are case-insensitive and a fractional number is allowed ("1.5Gi").
type ByteSize uint64

const (
	B  ByteSize = 1
	KB ByteSize = 1000
	MB ByteSize = 1000 * KB
	GB ByteSize = 1000 * MB
	TB ByteSize = 1000 * GB

	KiB ByteSize = 1024
	MiB ByteSize = 1024 * KiB
	GiB ByteSize = 1024 * MiB
	TiB ByteSize = 1024 * GiB
)

// unitMultiplier resolves a lowercased unit suffix, with or without the
// trailing "b".
func unitMultiplier(unit string) (ByteSize, bool) {
	switch strings.TrimSuffix(unit, "b") {
	case "":
		return B, true
	case "k":
		return KB, true
	case "m":
		return MB, true
	case "g":
		return GB, true
	case "t":
		return TB, true
	case "ki":
		return KiB, true
	case "mi":
		return MiB, true
	case "gi":
		return GiB, true
	case "ti":
		return TiB, true
	default:
		return 0, false
	}
}

// Parse converts a human-readable size string to a ByteSize.
func Parse(s string) (ByteSize, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	// Split into the leading number and the trailing unit.
	split := len(trimmed)
	for i, r := range trimmed {
		if (r < '0' || r > '9') && r != '.' {
			split = i
			break
		}
	}
	numStr := trimmed[:split]
	unit := strings.ToLower(strings.TrimSpace(trimmed[split:]))

	if numStr == "" {
		return 0, fmt.Errorf("invalid byte size format: %q", s)
	}

	mult, ok := unitMultiplier(unit)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", trimmed[split:])
	}

	if strings.Contains(numStr, ".") {
		num, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number in byte size: %q", numStr)
		}
		return ByteSize(num * float64(mult)), nil
	}

	num, err := strconv.ParseUint(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number in byte size: %q", numStr)
	}
	return ByteSize(num) * mult, nil
}

// UnmarshalText implements encoding.TextUnmarshaler so ByteSize fields
// decode directly from config and flag values.
func (b *ByteSize) UnmarshalText(text []byte) error {
	size, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = size
	return nil
}

// String renders the size with the largest binary unit that fits.
func (b ByteSize) String() string {
	switch {
	case b >= TiB:
		return fmt.Sprintf("%.2fTiB", float64(b)/float64(TiB))
	case b >= GiB:
		return fmt.Sprintf("%.2fGiB", float64(b)/float64(GiB))
	case b >= MiB:
		return fmt.Sprintf("%.2fMiB", float64(b)/float64(MiB))
	case b >= KiB:
		return fmt.Sprintf("%.2fKiB", float64(b)/float64(KiB))
	default:
		return fmt.Sprintf("%dB", uint64(b))
	}
}
