package lineindex

import (
	"strings"
	"testing"
)

func TestLineOf(t *testing.T) {
	text := "abc\ndef\nabc"
	idx := New(text)
	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{2, 0},
		{3, 0}, // the newline itself belongs to the line it terminates
		{4, 1},
		{7, 1},
		{8, 2},
		{10, 2},
	}
	for _, tt := range tests {
		if got := idx.LineOf(tt.offset); got != tt.want {
			t.Errorf("LineOf(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
	if idx.Lines() != 3 {
		t.Errorf("Lines() = %d, want 3", idx.Lines())
	}
}

func TestLineOf_noNewlines(t *testing.T) {
	idx := New("single line")
	if idx.LineOf(5) != 0 {
		t.Errorf("LineOf(5) = %d, want 0", idx.LineOf(5))
	}
	if idx.Lines() != 1 {
		t.Errorf("Lines() = %d, want 1", idx.Lines())
	}
}

func TestLineOf_outOfRange(t *testing.T) {
	idx := New("a\nb\n")
	if got := idx.LineOf(-3); got != 0 {
		t.Errorf("negative offset: got %d, want 0", got)
	}
	if got := idx.LineOf(100); got != 2 {
		t.Errorf("offset past end: got %d, want 2", got)
	}
}

func TestLineOf_monotonic(t *testing.T) {
	text := strings.Repeat("line of text\n\n", 50) + "tail"
	idx := New(text)
	prev := 0
	for off := 0; off < len(text); off++ {
		got := idx.LineOf(off)
		if got < prev {
			t.Fatalf("LineOf(%d) = %d < previous %d", off, got, prev)
		}
		if want := strings.Count(text[:off], "\n"); got != want {
			t.Fatalf("LineOf(%d) = %d, want %d", off, got, want)
		}
		prev = got
	}
}

func BenchmarkLineOf(b *testing.B) {
	idx := New(strings.Repeat("<p>paragraph</p>\n", 10000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.LineOf(i % 170000)
	}
}
