package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format of a query description file.
const (
	FormatJSON = "JSON"
	FormatYAML = "YAML"
)

// FormatFor returns the description format implied by a file name.
// Files ending in .yaml or .yml are YAML; everything else is JSON.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// LoadFile reads and decodes the query description at path without validating it.
func LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query: %w", err)
	}
	return Decode(data, FormatFor(path), path)
}

// Decode parses a query description. JSON numbers are kept as json.Number so
// integer options can be told apart from floats. name is used in errors only.
func Decode(data []byte, format, name string) (any, error) {
	var doc any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &DecodeError{Path: name, Format: format, Err: err}
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, &DecodeError{Path: name, Format: FormatJSON, Err: err}
		}
		if _, err := dec.Token(); err != io.EOF {
			return nil, &DecodeError{Path: name, Format: FormatJSON, Err: fmt.Errorf("unexpected data after top-level value")}
		}
	}
	return doc, nil
}

// Load reads, decodes and validates the query description at path.
func Load(path string, opts ...Option) (*Query, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc, opts...)
}
