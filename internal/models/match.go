// Package models defines the records a scan produces: matches, summaries and runs.
package models

import "time"

// Match is one reported result. Under the all_required policy a match is a whole
// file and Fragment/Line are empty; under any_located it is one occurrence.
type Match struct {
	Path     string `json:"path"`
	Fragment string `json:"fragment,omitempty"`
	Line     int    `json:"line,omitempty"` // 1-based
}

// IsFileMatch reports whether m is a file-level verdict rather than an occurrence.
func (m Match) IsFileMatch() bool {
	return m.Line == 0
}

// Summary is produced once after every scan root has been exhausted.
type Summary struct {
	Total        int           `json:"total"`
	FilesScanned int           `json:"files_scanned"`
	FilesMatched int           `json:"files_matched"`
	Skipped      int           `json:"skipped"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms"`
}
