package scan

import (
	"testing"

	"github.com/hyperjump/sanskan/internal/config"
	"github.com/hyperjump/sanskan/internal/query"
)

func TestConfigOptions(t *testing.T) {
	q, err := query.New(nil, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	s := NewScanner(q, ConfigOptions(config.ScanConfig{
		Extensions:     []string{".html"},
		Jobs:           3,
		SkipUnreadable: true,
		LenientUTF8:    true,
	})...)
	if s.jobs != 3 || !s.skipUnreadable {
		t.Errorf("jobs=%d skip=%v", s.jobs, s.skipUnreadable)
	}
	if len(s.extensions) != 1 || s.extensions[0] != ".html" {
		t.Errorf("extensions = %v", s.extensions)
	}
	got := s.Evaluate("a.htm", "x")
	if len(got) != 1 {
		t.Errorf("Evaluate returned %v", got)
	}

	def := NewScanner(q, ConfigOptions(config.ScanConfig{})...)
	if len(def.extensions) != 1 || def.extensions[0] != ".htm" {
		t.Errorf("default extensions = %v", def.extensions)
	}
}
