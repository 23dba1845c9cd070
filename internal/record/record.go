package record

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/recordkit/recstamp/internal/processor"
	"gopkg.in/yaml.v3"
)

// Sample returns the built-in record used when no input file is given.
func Sample() []processor.Record {
	return []processor.Record{
		{"id": 1, "name": "Test"},
	}
}

// Decode parses a list of records from data in the given format. A top-level
// list yields one record per element; a single top-level mapping is treated
// as a one-record list.
func Decode(data []byte, format Format) ([]processor.Record, error) {
	switch format {
	case JSON:
		return decodeJSON(data)
	case YAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// DecodeFile reads and parses records from a file, choosing the format by
// file extension.
func DecodeFile(path string) ([]processor.Record, error) {
	return DecodeFileAs(path, FormatForPath(path))
}

// DecodeFileAs reads and parses records from a file in an explicit format.
func DecodeFileAs(path string, format Format) ([]processor.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	records, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

func decodeJSON(data []byte) ([]processor.Record, error) {
	var records []processor.Record
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	// Fall back to a single top-level object.
	var single processor.Record
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("input is neither a JSON list nor an object: %w", err)
	}
	return []processor.Record{single}, nil
}

func decodeYAML(data []byte) ([]processor.Record, error) {
	var records []processor.Record
	if err := yaml.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var single processor.Record
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("input is neither a YAML list nor a mapping: %w", err)
	}
	return []processor.Record{single}, nil
}

// Encode serializes records in the given format. JSON output is indented
// with two spaces.
func Encode(records []processor.Record, format Format) ([]byte, error) {
	switch format {
	case JSON:
		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode records as JSON: %w", err)
		}
		return append(data, '\n'), nil
	case YAML:
		data, err := yaml.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("failed to encode records as YAML: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}
