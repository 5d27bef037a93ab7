// Package scan runs a fragment query over every candidate file under its scan roots.
package scan

import (
	"context"
	"fmt"
	"iter"
	"os"
	"time"

	"github.com/hyperjump/sanskan/internal/extract"
	"github.com/hyperjump/sanskan/internal/models"
	"github.com/hyperjump/sanskan/internal/query"
	"github.com/hyperjump/sanskan/internal/walk"
	"go.uber.org/zap"
)

// Reporter receives scan results. Matches of one file are delivered together and in
// order; Finish is called once, only when the scan completes.
type Reporter interface {
	Report(m models.Match) error
	Finish(s models.Summary) error
}

// TextExtractor reads the text content of a file.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// FileSource enumerates candidate files under a root.
type FileSource func(ctx context.Context, root string, extensions []string) iter.Seq2[string, error]

// Observer is notified of scan progress, e.g. for metrics.
type Observer interface {
	FileScanned(matches int)
	FileSkipped()
	ScanFinished(d time.Duration, err error)
}

// Scanner evaluates a query against files under the query's directories.
type Scanner struct {
	query          *query.Query
	extractor      TextExtractor
	files          FileSource
	extensions     []string
	jobs           int
	skipUnreadable bool
	observer       Observer
	logger         *zap.Logger // optional
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a logger for debug output and skip warnings.
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// WithExtractor replaces the default strict UTF-8 extractor.
func WithExtractor(e TextExtractor) ScannerOption {
	return func(s *Scanner) { s.extractor = e }
}

// WithFileSource replaces the default recursive directory walk.
func WithFileSource(f FileSource) ScannerOption {
	return func(s *Scanner) { s.files = f }
}

// WithExtensions sets the candidate file extensions; the default is .htm.
func WithExtensions(exts []string) ScannerOption {
	return func(s *Scanner) { s.extensions = append([]string(nil), exts...) }
}

// WithJobs sets how many files are evaluated concurrently. Values below 2 scan sequentially.
func WithJobs(n int) ScannerOption {
	return func(s *Scanner) { s.jobs = n }
}

// WithSkipUnreadable logs and skips files that cannot be read instead of aborting.
func WithSkipUnreadable(skip bool) ScannerOption {
	return func(s *Scanner) { s.skipUnreadable = skip }
}

// WithObserver sets a progress observer.
func WithObserver(o Observer) ScannerOption {
	return func(s *Scanner) { s.observer = o }
}

// NewScanner creates a scanner for q.
func NewScanner(q *query.Query, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		query:      q,
		extractor:  extract.NewExtractor(),
		files:      walk.Files,
		extensions: walk.DefaultExtensions,
		jobs:       1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query returns the query the scanner evaluates.
func (s *Scanner) Query() *query.Query {
	return s.query
}

// ValidateRoots checks that every directory exists and is a directory.
// It returns an *InvalidRootError for the first one that is not.
func ValidateRoots(dirs []string) error {
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return &InvalidRootError{Path: dir, Err: err}
		}
		if !info.IsDir() {
			return &InvalidRootError{Path: dir, Err: ErrNotDirectory}
		}
	}
	return nil
}

// Run validates every root, then scans them in order and reports results to rep.
// Any invalid root, fatal read failure, reporter error or cancellation aborts the
// run; Finish is then not called and the partial summary is returned with the error.
func (s *Scanner) Run(ctx context.Context, rep Reporter) (models.Summary, error) {
	start := time.Now()
	var sum models.Summary
	err := s.run(ctx, rep, &sum)
	if s.observer != nil {
		s.observer.ScanFinished(time.Since(start), err)
	}
	sum.Duration = time.Since(start)
	sum.DurationMS = sum.Duration.Milliseconds()
	if err != nil {
		return sum, err
	}
	if err := rep.Finish(sum); err != nil {
		return sum, fmt.Errorf("report summary: %w", err)
	}
	return sum, nil
}

func (s *Scanner) run(ctx context.Context, rep Reporter, sum *models.Summary) error {
	dirs := s.query.Directories()
	if err := ValidateRoots(dirs); err != nil {
		return err
	}
	for _, root := range dirs {
		if s.logger != nil {
			s.logger.Debug("scanning root", zap.String("root", root), zap.Int("jobs", s.jobs))
		}
		var err error
		if s.jobs > 1 {
			err = s.scanRootParallel(ctx, root, rep, sum)
		} else {
			err = s.scanRoot(ctx, root, rep, sum)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scanner) scanRoot(ctx context.Context, root string, rep Reporter, sum *models.Summary) error {
	for path, err := range s.files(ctx, root, s.extensions) {
		if err != nil {
			return walkError(ctx, root, err)
		}
		matches, err := s.ScanFile(path)
		if err := s.deliver(fileResult{path: path, matches: matches, err: err}, rep, sum); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// ScanFile reads one file and evaluates the query against it.
func (s *Scanner) ScanFile(path string) ([]models.Match, error) {
	text, err := s.extractor.Extract(path)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(path, text), nil
}

// Evaluate applies the query's match policy to text read from path.
func (s *Scanner) Evaluate(path, text string) []models.Match {
	if s.query.Policy() == query.AllRequired {
		if s.query.MatchesAll(text) {
			return []models.Match{{Path: path}}
		}
		return nil
	}
	var matches []models.Match
	for occ := range s.query.Occurrences(text) {
		matches = append(matches, models.Match{Path: path, Fragment: occ.Fragment, Line: occ.Line})
	}
	return matches
}

type fileResult struct {
	path    string
	matches []models.Match
	err     error
}

func (s *Scanner) deliver(r fileResult, rep Reporter, sum *models.Summary) error {
	if r.err != nil {
		if !s.skipUnreadable {
			return &FileReadError{Path: r.path, Err: r.err}
		}
		if s.logger != nil {
			s.logger.Warn("skipping unreadable file", zap.String("path", r.path), zap.Error(r.err))
		}
		if s.observer != nil {
			s.observer.FileSkipped()
		}
		sum.Skipped++
		return nil
	}
	sum.FilesScanned++
	for _, m := range r.matches {
		if err := rep.Report(m); err != nil {
			return fmt.Errorf("report match: %w", err)
		}
		sum.Total++
	}
	if len(r.matches) > 0 {
		sum.FilesMatched++
	}
	if s.observer != nil {
		s.observer.FileScanned(len(r.matches))
	}
	return nil
}

func walkError(ctx context.Context, root string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("walk %s: %w", root, err)
}
