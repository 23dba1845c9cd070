package record

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format represents a record serialization format
type Format string

const (
	// JSON format reads and writes indented JSON
	JSON Format = "json"
	// YAML format reads and writes YAML documents
	YAML Format = "yaml"
)

// ParseFormat converts a user-supplied string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown format: %s (expected json or yaml)", s)
	}
}

// FormatForPath guesses the format from a file extension, defaulting to JSON
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}
