package query

import "fmt"

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	// Missing means a required key is absent.
	Missing ErrorKind = iota + 1
	// WrongType means a key is present with the wrong shape.
	WrongType
	// Invalid means the value has the right shape but a disallowed value.
	Invalid
)

func (k ErrorKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case WrongType:
		return "wrong_type"
	case Invalid:
		return "invalid"
	}
	return "unknown"
}

// ValidationError names the first malformed field of a query description.
type ValidationError struct {
	Field    string
	Kind     ErrorKind
	Expected string // shape the field must have, for WrongType
	Detail   string // constraint violated, for Invalid
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case Missing:
		return fmt.Sprintf("missing %q key", e.Field)
	case WrongType:
		return fmt.Sprintf("%q must be %s", e.Field, e.Expected)
	default:
		return fmt.Sprintf("%q %s", e.Field, e.Detail)
	}
}

// DecodeError reports a query file that could not be parsed at all.
type DecodeError struct {
	Path   string
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s from %s: %v", e.Format, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
