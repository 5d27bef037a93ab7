package query

import (
	"iter"
	"unicode/utf8"

	"github.com/hyperjump/sanskan/internal/lineindex"
)

// Occurrence is one located instance of a fragment in a text.
type Occurrence struct {
	Fragment string `json:"fragment"`
	Offset   int    `json:"offset"`
	Line     int    `json:"line"` // 1-based
}

// MatchesAll reports whether every fragment occurs at least once in text.
// It stops at the first absent fragment. A query with no fragments matches every text.
func (q *Query) MatchesAll(text string) bool {
	for _, f := range q.fragments {
		if !f.matcher.MatchString(text) {
			return false
		}
	}
	return true
}

// Occurrences yields every non-overlapping occurrence of each fragment, fragment-major
// and left to right within a fragment, truncated to MaxResultsPerText across the whole
// text. An empty fragment occurs at every character boundary, the end of text included.
// Occurrences are produced lazily; stop ranging to abandon the rest.
func (q *Query) Occurrences(text string) iter.Seq[Occurrence] {
	return func(yield func(Occurrence) bool) {
		if len(q.fragments) == 0 || q.maxResults == 0 {
			return
		}
		lines := lineindex.New(text)
		emitted := 0
		for _, f := range q.fragments {
			pos := 0
			for pos <= len(text) {
				loc := f.matcher.FindStringIndex(text[pos:])
				if loc == nil {
					break
				}
				start, end := pos+loc[0], pos+loc[1]
				if !yield(Occurrence{Fragment: f.text, Offset: start, Line: lines.LineOf(start) + 1}) {
					return
				}
				emitted++
				if q.maxResults > 0 && emitted >= q.maxResults {
					return
				}
				switch {
				case end > start:
					pos = end
				case end < len(text):
					// An empty fragment steps over one character.
					_, size := utf8.DecodeRuneInString(text[end:])
					pos = end + size
				default:
					pos = len(text) + 1
				}
			}
		}
	}
}
