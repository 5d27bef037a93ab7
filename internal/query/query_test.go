package query

import (
	"errors"
	"reflect"
	"testing"
)

func TestNew_dedupesFragments(t *testing.T) {
	q, err := New([]string{"/a"}, []string{"x", "y", "x"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(q.Fragments(), []string{"x", "y"}) {
		t.Errorf("Fragments() = %v", q.Fragments())
	}
}

func TestNew_rejectsEmptyFragment(t *testing.T) {
	_, err := New([]string{"/a"}, []string{"x", ""})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field != "fragments[1]" || verr.Kind != Invalid {
		t.Errorf("unexpected error %+v", verr)
	}
	if _, err := New([]string{"/a"}, []string{"x", ""}, WithMaxResultsPerText(-1)); err == nil {
		t.Error("an explicitly unbounded cap must still reject the empty fragment")
	}
	if _, err := New([]string{"/a"}, []string{"x", ""}, WithMaxResultsPerText(0)); err != nil {
		t.Errorf("zero cap: %v", err)
	}
}

func TestQuery_defaults(t *testing.T) {
	q, err := New([]string{"/a", "/b"}, []string{"x"})
	if err != nil {
		t.Fatal(err)
	}
	if q.Policy() != AnyLocated {
		t.Errorf("Policy() = %v, want any_located", q.Policy())
	}
	if _, ok := q.MaxResultsPerText(); ok {
		t.Error("MaxResultsPerText should be unset by default")
	}
	dirs := q.Directories()
	dirs[0] = "mutated"
	if q.Directories()[0] != "/a" {
		t.Error("Directories() must return a copy")
	}
}

func TestQuery_String(t *testing.T) {
	q, _ := New([]string{"/a", "/b"}, []string{"x", "y"})
	if got, want := q.String(), `[ 'x' | 'y' ] in [ /a, /b ]`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
	q, _ = New([]string{"/a"}, []string{"x", "y"}, WithPolicy(AllRequired))
	if got, want := q.String(), `[ 'x' & 'y' ] in [ /a ]`; got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}

func TestQuoteFragment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"abc", `'abc'`},
		{"", `''`},
		{"it's", `"it's"`},
		{`it's "x"`, `'it\'s "x"'`},
		{`say "hi"`, `'say "hi"'`},
		{`a\b`, `'a\\b'`},
		{"a\tb\nc", `'a\tb\nc'`},
		{"caf\u00e9", "'café'"},
		{"\x00\x7f", `'\x00\x7f'`},
		{"\u200b", `'\u200b'`},
	}
	for _, tt := range tests {
		if got := quoteFragment(tt.in); got != tt.want {
			t.Errorf("quoteFragment(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MatchPolicy
		wantErr bool
	}{
		{"any_located", AnyLocated, false},
		{"ALL_REQUIRED", AllRequired, false},
		{" all ", AllRequired, false},
		{"some", AnyLocated, true},
	}
	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParsePolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
