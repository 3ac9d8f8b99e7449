package timeutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"15s", "15s"},
		{"90s", "1m 30s"},
		{"2h5m", "2h 5m 0s"},
		{"72h30m15s", "3d 0h 30m 15s"},
		{"24h", "1d 0h 0m 0s"},
		{"0s", "0s"},
		{"not-a-duration", "not-a-duration"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUptime(tt.input))
		})
	}
}
