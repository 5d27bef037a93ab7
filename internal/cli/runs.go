package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/sanskan/internal/models"
)

// WriteRuns writes a list of recorded runs.
func WriteRuns(w io.Writer, runs []*models.Run, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "no recorded runs")
		return err
	}
	for _, run := range runs {
		if _, err := fmt.Fprintf(w, "%s  %-9s  %5d matches  %s  %s\n",
			run.ID, run.Status, run.Summary.Total, run.StartedAt.Format(time.RFC3339), Truncate(run.Query, 80)); err != nil {
			return err
		}
	}
	return nil
}

// WriteRun writes one recorded run with its matches.
func WriteRun(w io.Writer, run *models.Run, matches []models.Match, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*models.Run
			Matches []models.Match `json:"matches"`
		}{run, matches})
	}
	fmt.Fprintf(w, "id:           %s\n", run.ID)
	fmt.Fprintf(w, "query:        %s\n", run.Query)
	fmt.Fprintf(w, "policy:       %s\n", run.Policy)
	fmt.Fprintf(w, "directories:  %s\n", strings.Join(run.Directories, ", "))
	fmt.Fprintf(w, "status:       %s\n", run.Status)
	if run.Error != "" {
		fmt.Fprintf(w, "error:        %s\n", run.Error)
	}
	fmt.Fprintf(w, "started_at:   %s\n", run.StartedAt.Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Fprintf(w, "finished_at:  %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "files:        %d scanned, %d matched, %d skipped\n", run.Summary.FilesScanned, run.Summary.FilesMatched, run.Summary.Skipped)
	fmt.Fprintln(w)
	out := NewWriter(w, format)
	for _, m := range matches {
		if err := out.Report(m); err != nil {
			return err
		}
	}
	if run.Status == models.RunCompleted {
		return out.Finish(run.Summary)
	}
	return nil
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
