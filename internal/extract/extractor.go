// Package extract reads candidate files as UTF-8 text.
package extract

import (
	"errors"
	"fmt"
	"os"
)

// ErrInvalidUTF8 is returned when a file is not valid UTF-8 and the extractor is strict.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Extractor reads the full text content of files.
type Extractor struct {
	lenient bool
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLenientUTF8 replaces invalid UTF-8 sequences with U+FFFD instead of failing.
func WithLenientUTF8() ExtractorOption {
	return func(e *Extractor) { e.lenient = true }
}

// NewExtractor returns a new Extractor. By default content must be valid UTF-8.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its text content.
// Returns an error if the file cannot be read or, when strict, is not valid UTF-8.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content)
}

// ExtractBytes decodes content as UTF-8, dropping a leading byte order mark.
func (e *Extractor) ExtractBytes(content []byte) (string, error) {
	return decodeUTF8(content, e.lenient)
}
