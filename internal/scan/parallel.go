package scan

import (
	"context"
	"sync"

	"github.com/hyperjump/sanskan/internal/models"
)

// scanRootParallel evaluates files on s.jobs workers. Results are handed to the
// reporter by this goroutine only, in enumeration order and one file at a time.
func (s *Scanner) scanRootParallel(ctx context.Context, root string, rep Reporter, sum *models.Summary) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		path string
		out  chan<- fileResult
	}
	jobs := make(chan job)
	pending := make(chan chan fileResult, s.jobs)

	var wg sync.WaitGroup
	wg.Add(s.jobs)
	for i := 0; i < s.jobs; i++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				matches, err := s.ScanFile(j.path)
				j.out <- fileResult{path: j.path, matches: matches, err: err}
			}
		}()
	}

	// walkErr is written before pending is closed and read only after it is drained.
	var walkErr error
	go func() {
		defer close(pending)
		defer close(jobs)
		for path, err := range s.files(runCtx, root, s.extensions) {
			if err != nil {
				walkErr = err
				return
			}
			out := make(chan fileResult, 1)
			select {
			case pending <- out:
			case <-runCtx.Done():
				return
			}
			select {
			case jobs <- job{path: path, out: out}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	var firstErr error
	for out := range pending {
		var r fileResult
		select {
		case r = <-out:
		case <-runCtx.Done():
		}
		if err := runCtx.Err(); err != nil {
			firstErr = err
			break
		}
		if err := s.deliver(r, rep, sum); err != nil {
			firstErr = err
			break
		}
	}
	cancel()
	for range pending {
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if walkErr != nil {
		return walkError(ctx, root, walkErr)
	}
	return nil
}
