package query

import (
	"encoding/json"
	"math"
)

// Keys of a query description.
const (
	KeyDirectories       = "directories"
	KeyFragments         = "fragments"
	KeyOptions           = "options"
	KeyMaxResultsPerText = "max_results_per_text"
	KeyMatchPolicy       = "match_policy"
)

// FromDocument validates a decoded query description and builds a Query.
// Checks run field by field in the order directories, fragments, options; for each
// field presence is checked before type before value, and the first failure is
// returned as a *ValidationError. opts are applied after the description's own
// options, so callers can override them.
func FromDocument(doc any, opts ...Option) (*Query, error) {
	obj, ok := asObject(doc)
	if !ok {
		return nil, &ValidationError{Field: "query", Kind: WrongType, Expected: "an object"}
	}

	directories, err := requireStrings(obj, KeyDirectories)
	if err != nil {
		return nil, err
	}
	fragments, err := requireStrings(obj, KeyFragments)
	if err != nil {
		return nil, err
	}

	var docOpts []Option
	if raw, present := obj[KeyOptions]; present {
		options, ok := asObject(raw)
		if !ok {
			return nil, &ValidationError{Field: KeyOptions, Kind: WrongType, Expected: "an object"}
		}
		if raw, present := options[KeyMaxResultsPerText]; present {
			field := KeyOptions + "." + KeyMaxResultsPerText
			n, ok := asInt(raw)
			if !ok {
				return nil, &ValidationError{Field: field, Kind: WrongType, Expected: "an integer"}
			}
			if n < 0 {
				return nil, &ValidationError{Field: field, Kind: Invalid, Detail: "must be non-negative"}
			}
			docOpts = append(docOpts, WithMaxResultsPerText(n))
		}
		if raw, present := options[KeyMatchPolicy]; present {
			field := KeyOptions + "." + KeyMatchPolicy
			s, ok := raw.(string)
			if !ok {
				return nil, &ValidationError{Field: field, Kind: WrongType, Expected: "a string"}
			}
			p, err := ParsePolicy(s)
			if err != nil {
				return nil, &ValidationError{Field: field, Kind: Invalid, Detail: `must be one of "any_located", "all_required"`}
			}
			docOpts = append(docOpts, WithPolicy(p))
		}
	}

	return New(directories, fragments, append(docOpts, opts...)...)
}

func requireStrings(obj map[string]any, key string) ([]string, error) {
	raw, present := obj[key]
	if !present {
		return nil, &ValidationError{Field: key, Kind: Missing}
	}
	out, ok := asStrings(raw)
	if !ok {
		return nil, &ValidationError{Field: key, Kind: WrongType, Expected: "a list of strings"}
	}
	return out, nil
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}
	return nil, false
}

func asStrings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// asInt accepts integer values only: booleans and floating-point numbers are rejected
// even when integral.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return asInt(i)
	}
	return 0, false
}
