// Package query holds a validated fragment query and evaluates it against text.
package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MatchPolicy selects how a query is evaluated against a text.
type MatchPolicy int

const (
	// AnyLocated reports every occurrence of every fragment with its line number.
	AnyLocated MatchPolicy = iota
	// AllRequired reports a file-level verdict: every fragment must occur at least once.
	AllRequired
)

// String returns the policy name used in query descriptions.
func (p MatchPolicy) String() string {
	switch p {
	case AllRequired:
		return "all_required"
	default:
		return "any_located"
	}
}

// ParsePolicy returns the policy for its description name.
func ParsePolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any_located", "any":
		return AnyLocated, nil
	case "all_required", "all":
		return AllRequired, nil
	}
	return AnyLocated, fmt.Errorf("unknown match policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p MatchPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

type fragment struct {
	text    string
	matcher *regexp.Regexp
}

// Query is a validated set of fragments, scan roots and match policy.
// It is immutable and safe for concurrent evaluation.
type Query struct {
	directories []string
	fragments   []fragment
	policy      MatchPolicy
	maxResults  int // -1 means unbounded
}

// Option configures a Query.
type Option func(*Query)

// WithPolicy sets the match policy; the default is AnyLocated.
func WithPolicy(p MatchPolicy) Option {
	return func(q *Query) { q.policy = p }
}

// WithMaxResultsPerText caps the occurrences reported per text under AnyLocated.
// A negative value removes the cap.
func WithMaxResultsPerText(n int) Option {
	return func(q *Query) {
		if n < 0 {
			n = -1
		}
		q.maxResults = n
	}
}

// New builds a query from directories and fragments. Duplicate fragments collapse
// onto their first occurrence. An empty fragment occurs at every character position,
// so it is rejected unless a per-text cap is set.
func New(directories, fragments []string, opts ...Option) (*Query, error) {
	q := &Query{
		directories: append([]string(nil), directories...),
		maxResults:  -1,
	}
	for _, opt := range opts {
		opt(q)
	}
	seen := make(map[string]bool, len(fragments))
	for i, f := range fragments {
		if f == "" && q.maxResults < 0 {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("fragments[%d]", i),
				Kind:   Invalid,
				Detail: "must not be empty unless " + KeyMaxResultsPerText + " is set",
			}
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		q.fragments = append(q.fragments, fragment{
			text:    f,
			matcher: regexp.MustCompile("(?i)" + regexp.QuoteMeta(f)),
		})
	}
	return q, nil
}

// Directories returns a copy of the scan roots in configured order.
func (q *Query) Directories() []string {
	return append([]string(nil), q.directories...)
}

// Fragments returns the distinct fragments in first-seen order.
func (q *Query) Fragments() []string {
	out := make([]string, len(q.fragments))
	for i, f := range q.fragments {
		out[i] = f.text
	}
	return out
}

// Policy returns the match policy.
func (q *Query) Policy() MatchPolicy {
	return q.policy
}

// MaxResultsPerText returns the per-text cap and whether one is set.
func (q *Query) MaxResultsPerText() (int, bool) {
	return q.maxResults, q.maxResults >= 0
}
// String renders the query banner, e.g. [ 'a' | 'b' ] in [ /x, /y ].
// String renders the query banner, e.g. [ "a" | "b" ] in [ /x, /y ].
func (q *Query) String() string {
	joiner := " | "
	if q.policy == AllRequired {
		joiner = " & "
	}
	quoted := make([]string, len(q.fragments))
	for i, f := range q.fragments {
		quoted[i] = quoteFragment(f.text)
	}
	return fmt.Sprintf("[ %s ] in [ %s ]", strings.Join(quoted, joiner), strings.Join(q.directories, ", "))
}

// quoteFragment renders s as a single-quoted literal, switching to double quotes
// when s holds a single quote and no double quote. Backslashes, the chosen quote
// and non-printable characters are escaped.
func quoteFragment(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r < 0x100:
			fmt.Fprintf(&b, `\x%02x`, r)
		case r < 0x10000:
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			fmt.Fprintf(&b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}
