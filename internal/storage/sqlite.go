package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/sanskan/internal/fileid"
	"github.com/hyperjump/sanskan/internal/models"
)

// SQLiteStorage implements RunStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		query TEXT NOT NULL,
		policy TEXT NOT NULL,
		directories TEXT NOT NULL,
		fragments TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		total INTEGER NOT NULL DEFAULT 0,
		files_scanned INTEGER NOT NULL DEFAULT 0,
		files_matched INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS matches (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		file_id TEXT NOT NULL,
		path TEXT NOT NULL,
		fragment TEXT,
		line INTEGER,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_matches_file_id ON matches(file_id);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateRun inserts a run in the running state. An ID is generated when empty.
func (s *SQLiteStorage) CreateRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	dirsJSON, err := json.Marshal(run.Directories)
	if err != nil {
		return fmt.Errorf("failed to marshal directories: %w", err)
	}
	fragsJSON, err := json.Marshal(run.Fragments)
	if err != nil {
		return fmt.Errorf("failed to marshal fragments: %w", err)
	}
	run.Status = models.RunRunning
	run.StartedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, query, policy, directories, fragments, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Query, run.Policy, string(dirsJSON), string(fragsJSON), run.Status, run.StartedAt,
	)
	return err
}

// FinishRun stores the summary and marks the run completed, or failed when runErr is set.
func (s *SQLiteStorage) FinishRun(ctx context.Context, id string, summary models.Summary, runErr error) error {
	status := models.RunCompleted
	var errText sql.NullString
	if runErr != nil {
		status = models.RunFailed
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	result, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, total = ?, files_scanned = ?, files_matched = ?,
		 skipped = ?, duration_ms = ?, finished_at = ? WHERE id = ?`,
		status, errText, summary.Total, summary.FilesScanned, summary.FilesMatched,
		summary.Skipped, summary.DurationMS, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

const runColumns = `id, query, policy, directories, fragments, status, error, total, files_scanned,
	files_matched, skipped, duration_ms, started_at, finished_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var (
		run       models.Run
		dirsJSON  string
		fragsJSON string
		errText   sql.NullString
		finished  sql.NullTime
	)
	if err := row.Scan(&run.ID, &run.Query, &run.Policy, &dirsJSON, &fragsJSON, &run.Status, &errText,
		&run.Summary.Total, &run.Summary.FilesScanned, &run.Summary.FilesMatched, &run.Summary.Skipped,
		&run.Summary.DurationMS, &run.StartedAt, &finished); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(dirsJSON), &run.Directories); err != nil {
		return nil, fmt.Errorf("failed to unmarshal directories: %w", err)
	}
	if err := json.Unmarshal([]byte(fragsJSON), &run.Fragments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fragments: %w", err)
	}
	run.Error = errText.String
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	run.Summary.Duration = time.Duration(run.Summary.DurationMS) * time.Millisecond
	return &run, nil
}

// GetRun returns a run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs, newest first, with offset and limit.
func (s *SQLiteStorage) ListRuns(ctx context.Context, offset, limit int) ([]*models.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its matches.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE run_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// AddMatches appends matches to a run in a transaction, preserving their order.
func (s *SQLiteStorage) AddMatches(ctx context.Context, runID string, matches []models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), -1) + 1 FROM matches WHERE run_id = ?`, runID,
	).Scan(&next); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (run_id, seq, file_id, path, fragment, line) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range matches {
		abs, err := filepath.Abs(m.Path)
		if err != nil {
			abs = m.Path
		}
		if _, err := stmt.ExecContext(ctx, runID, next+i, fileid.FileDocID(abs), m.Path, m.Fragment, m.Line); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetMatches returns the matches of a run in reported order.
func (s *SQLiteStorage) GetMatches(ctx context.Context, runID string) ([]models.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, fragment, line FROM matches WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []models.Match{}
	for rows.Next() {
		var m models.Match
		var fragment sql.NullString
		var line sql.NullInt64
		if err := rows.Scan(&m.Path, &fragment, &line); err != nil {
			return nil, err
		}
		m.Fragment = fragment.String
		m.Line = int(line.Int64)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CountRuns returns the total number of recorded runs.
func (s *SQLiteStorage) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
