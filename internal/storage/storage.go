// Package storage defines the persistence interface for scan run history.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/sanskan/internal/models"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// RunStore persists scan runs and their matches.
type RunStore interface {
	// Run operations
	CreateRun(ctx context.Context, run *models.Run) error
	FinishRun(ctx context.Context, id string, summary models.Summary, runErr error) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	ListRuns(ctx context.Context, offset, limit int) ([]*models.Run, error)
	DeleteRun(ctx context.Context, id string) error

	// Match operations
	AddMatches(ctx context.Context, runID string, matches []models.Match) error
	GetMatches(ctx context.Context, runID string) ([]models.Match, error)

	// Stats
	CountRuns(ctx context.Context) (int64, error)

	Close() error
}
