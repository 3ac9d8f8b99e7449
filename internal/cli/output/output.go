// Package output renders CLI command results as tables, JSON, or YAML.
//
// Table is the human-facing default; JSON and YAML exist for scripting, so
// commands that print decorative status lines suppress them in those
// formats.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format selects how a command renders its result.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat resolves a -o flag value. The empty string means table, and
// "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes human-facing status lines, colored when the terminal
// supports it.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a Printer. color false strips the ANSI escapes.
func NewPrinter(out io.Writer, color bool) *Printer {
	return &Printer{out: out, color: color}
}

// Success prints msg in green.
func (p *Printer) Success(msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[32m%s\033[0m\n", msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}
