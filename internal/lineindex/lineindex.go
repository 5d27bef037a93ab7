// Package lineindex maps byte offsets in a text to line numbers.
package lineindex

import (
	"sort"
	"strings"
)

// Index holds the ascending offsets of every '\n' in a text.
// It is immutable after New and safe for concurrent reads.
type Index struct {
	newlines []int
}

// New scans text once and records the offset of each newline.
func New(text string) *Index {
	newlines := make([]int, 0, strings.Count(text, "\n"))
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			newlines = append(newlines, i)
		}
	}
	return &Index{newlines: newlines}
}

// LineOf returns the zero-based line containing offset: the number of newlines
// strictly before it. Offsets past the end resolve to the last line and negative
// offsets to line 0.
func (x *Index) LineOf(offset int) int {
	if offset <= 0 {
		return 0
	}
	return sort.SearchInts(x.newlines, offset)
}

// Lines returns the number of lines in the indexed text.
func (x *Index) Lines() int {
	return len(x.newlines) + 1
}
