package scan

import (
	"errors"
	"fmt"
)

// ErrNotDirectory is wrapped by InvalidRootError when a root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// InvalidRootError reports a scan root that does not exist or is not a directory.
type InvalidRootError struct {
	Path string
	Err  error
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("%s is not a directory: %v", e.Path, e.Err)
}

func (e *InvalidRootError) Unwrap() error { return e.Err }

// FileReadError reports a candidate file that could not be read or decoded.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }
