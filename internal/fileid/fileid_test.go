package fileid

import (
	"strings"
	"testing"
)

func TestFileDocID(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"deterministic", "/site/index.htm", "/site/index.htm", true},
		{"different files", "/site/index.htm", "/site/about.htm", false},
		{"trailing slash", "/site/docs", "/site/docs/", true},
		{"dot segment", "/site/docs/a.htm", "/site/./docs/a.htm", true},
		{"parent segment", "/site/docs/../a.htm", "/site/a.htm", true},
		{"case matters", "/site/A.htm", "/site/a.htm", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FileDocID(tt.a) == FileDocID(tt.b)
			if got != tt.same {
				t.Errorf("FileDocID(%q) == FileDocID(%q) is %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestFileDocID_format(t *testing.T) {
	id := FileDocID("/site/index.htm")
	if !strings.HasPrefix(id, prefix) {
		t.Errorf("ID should have prefix %q: got %q", prefix, id)
	}
	// sha256 hex digest
	if len(id) != len(prefix)+64 {
		t.Errorf("unexpected ID length %d: %q", len(id), id)
	}
}
