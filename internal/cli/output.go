// Package cli provides report writers for the sanskan command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/hyperjump/sanskan/internal/models"
)

// OutputFormat is the format for scan result output.
type OutputFormat string

const (
	// OutputText is the human-readable [match] / [summary] form (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one path:line:fragment record per line, for piping into other tools.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is newline-delimited JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat returns the output format named by s.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputCompact, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
}

// Writer reports scan results to an io.Writer. It is safe for concurrent use.
type Writer struct {
	mu     sync.Mutex
	w      io.Writer
	format OutputFormat
	enc    *json.Encoder
}

// NewWriter returns a reporter writing to w in the given format.
func NewWriter(w io.Writer, format OutputFormat) *Writer {
	return &Writer{w: w, format: format, enc: json.NewEncoder(w)}
}

type jsonRecord struct {
	Type string `json:"type"`
	models.Match
}

type jsonSummary struct {
	Type string `json:"type"`
	models.Summary
}

// Report writes one match.
func (r *Writer) Report(m models.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	switch r.format {
	case OutputJSON:
		err = r.enc.Encode(jsonRecord{Type: "match", Match: m})
	case OutputCompact:
		if m.IsFileMatch() {
			_, err = fmt.Fprintln(r.w, m.Path)
		} else {
			_, err = fmt.Fprintf(r.w, "%s:%d:%s\n", m.Path, m.Line, m.Fragment)
		}
	default:
		if m.IsFileMatch() {
			_, err = fmt.Fprintf(r.w, "[match] %s\n", m.Path)
		} else {
			_, err = fmt.Fprintf(r.w, "[match] \"%s\" at %s:%d\n", m.Fragment, m.Path, m.Line)
		}
	}
	return err
}

// Finish writes the summary. Compact output has no summary line.
func (r *Writer) Finish(s models.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.format {
	case OutputJSON:
		return r.enc.Encode(jsonSummary{Type: "summary", Summary: s})
	case OutputCompact:
		return nil
	}
	_, err := fmt.Fprintf(r.w, "[summary] %d matches\n", s.Total)
	return err
}

// WriteQueryBanner writes the [query] line shown before a text scan.
func WriteQueryBanner(w io.Writer, banner string, format OutputFormat) {
	if format == OutputText {
		fmt.Fprintf(w, "[query] %s\n", banner)
	}
}
