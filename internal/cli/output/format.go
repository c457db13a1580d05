// Package output formats blenderctl command results as a table, JSON, or
// YAML, mirroring the reference client's internal/cli/output package.
package output

import (
	"fmt"
	"strings"
)

// Format is a supported output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses s into a Format, defaulting to table on an empty string.
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

// TableRenderer is implemented by types that know how to lay themselves out
// as a table.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}
