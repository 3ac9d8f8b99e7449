// Package timeutil formats durations for CLI output.
package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// FormatUptime renders a Go duration string (as reported by the daemon,
// e.g. "72h30m15s") as "3d 0h 30m 15s". Unparseable input is returned
// as-is so a protocol change never breaks the status display.
func FormatUptime(uptime string) string {
	d, err := time.ParseDuration(uptime)
	if err != nil {
		return uptime
	}

	total := int(d.Seconds())
	parts := []struct {
		unit    string
		seconds int
	}{
		{"d", 86400},
		{"h", 3600},
		{"m", 60},
		{"s", 1},
	}

	var b strings.Builder
	for _, p := range parts {
		n := total / p.seconds
		total %= p.seconds

		// Leading zero units are skipped; inner ones are kept so the
		// rendering always reads as a contiguous span.
		if n == 0 && b.Len() == 0 && p.unit != "s" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d%s", n, p.unit)
	}
	return b.String()
}
