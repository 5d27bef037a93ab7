package e2e

import (
	"strings"
	"testing"
)

func TestBuildSite_uniqueSignatures(t *testing.T) {
	site := BuildSite(60)
	if len(site.Pages) != 60 {
		t.Fatalf("expected 60 pages, got %d", len(site.Pages))
	}
	seen := make(map[string]bool)
	for _, p := range site.Pages {
		if seen[p.Signature] {
			t.Errorf("duplicate signature %q", p.Signature)
		}
		seen[p.Signature] = true
	}
}

func TestPage_signatureOnExpectedLine(t *testing.T) {
	p := BuildSite(1).Pages[0]
	lines := strings.Split(p.HTML(), "\n")
	if !strings.Contains(lines[SignatureLine-1], p.Signature) {
		t.Errorf("line %d = %q, want signature %q", SignatureLine, lines[SignatureLine-1], p.Signature)
	}
}
