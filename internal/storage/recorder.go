package storage

import (
	"context"
	"fmt"

	"github.com/hyperjump/sanskan/internal/models"
)

const defaultFlushSize = 500

// Recorder is a scan reporter that writes matches and the final summary to a run.
// Matches are buffered and flushed in batches.
type Recorder struct {
	ctx   context.Context
	store RunStore
	runID string
	buf   []models.Match
	flush int
}

// NewRecorder creates the run in store and returns a recorder for it.
func NewRecorder(ctx context.Context, store RunStore, run *models.Run) (*Recorder, error) {
	if err := store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return &Recorder{ctx: ctx, store: store, runID: run.ID, flush: defaultFlushSize}, nil
}

// RunID returns the ID of the run being recorded.
func (r *Recorder) RunID() string {
	return r.runID
}

// Report buffers m, flushing when the batch is full.
func (r *Recorder) Report(m models.Match) error {
	r.buf = append(r.buf, m)
	if len(r.buf) >= r.flush {
		return r.flushMatches()
	}
	return nil
}

// Finish flushes pending matches and marks the run completed.
func (r *Recorder) Finish(s models.Summary) error {
	if err := r.flushMatches(); err != nil {
		return err
	}
	return r.store.FinishRun(r.ctx, r.runID, s, nil)
}

// Fail flushes pending matches and marks the run failed with runErr.
func (r *Recorder) Fail(s models.Summary, runErr error) error {
	if err := r.flushMatches(); err != nil {
		return err
	}
	return r.store.FinishRun(r.ctx, r.runID, s, runErr)
}

func (r *Recorder) flushMatches() error {
	if len(r.buf) == 0 {
		return nil
	}
	if err := r.store.AddMatches(r.ctx, r.runID, r.buf); err != nil {
		return fmt.Errorf("failed to store matches: %w", err)
	}
	r.buf = r.buf[:0]
	return nil
}
