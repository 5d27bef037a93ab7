package cli

import (
	"sync"

	"github.com/hyperjump/sanskan/internal/models"
)

// Collector buffers matches and the summary in memory.
type Collector struct {
	mu       sync.Mutex
	matches  []models.Match
	summary  models.Summary
	finished bool
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{matches: []models.Match{}}
}

// Report appends m.
func (c *Collector) Report(m models.Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = append(c.matches, m)
	return nil
}

// Finish stores the summary.
func (c *Collector) Finish(s models.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = s
	c.finished = true
	return nil
}

// Matches returns a copy of the collected matches.
func (c *Collector) Matches() []models.Match {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Match{}, c.matches...)
}

// Summary returns the summary and whether Finish was called.
func (c *Collector) Summary() (models.Summary, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary, c.finished
}

// Reporter is the subset of scan.Reporter used to fan out results.
type Reporter interface {
	Report(m models.Match) error
	Finish(s models.Summary) error
}

// Multi reports to every reporter in order, stopping at the first error.
func Multi(reporters ...Reporter) Reporter {
	return multi(reporters)
}

type multi []Reporter

func (m multi) Report(match models.Match) error {
	for _, r := range m {
		if err := r.Report(match); err != nil {
			return err
		}
	}
	return nil
}

func (m multi) Finish(s models.Summary) error {
	for _, r := range m {
		if err := r.Finish(s); err != nil {
			return err
		}
	}
	return nil
}
