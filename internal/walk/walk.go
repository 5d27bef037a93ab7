// Package walk enumerates candidate files under a scan root.
package walk

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
)

// DefaultExtensions is the extension filter used when none is configured.
var DefaultExtensions = []string{".htm"}

// Files yields the regular files under root whose extension matches extensions,
// recursively and in lexical order. An empty extensions list matches every file.
// A walk error or context cancellation is yielded once and ends the sequence.
//
// A root that is a symbolic link is resolved before walking, and yielded paths
// keep root as their prefix. Links below the root are not followed.
func Files(ctx context.Context, root string, extensions []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			yield("", err)
			return
		}
		stopped := false
		err = filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !d.Type().IsRegular() || !MatchExtension(path, extensions) {
				return nil
			}
			rel, err := filepath.Rel(resolved, path)
			if err != nil {
				return err
			}
			if !yield(filepath.Join(root, rel), nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield("", err)
		}
	}
}

// MatchExtension reports whether path has one of extensions. Comparison ignores case
// and a leading dot. An empty list matches everything.
func MatchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	extNorm := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == extNorm {
			return true
		}
	}
	return false
}
