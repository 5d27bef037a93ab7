package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/sanskan/internal/cli"
	"github.com/hyperjump/sanskan/internal/query"
	"github.com/hyperjump/sanskan/internal/scan"
	"github.com/hyperjump/sanskan/test/e2e"
)

func setupSite(b *testing.B, pages int) string {
	b.Helper()
	root := b.TempDir()
	if err := e2e.BuildSite(pages).Write(root); err != nil {
		b.Fatal(err)
	}
	return root
}

func BenchmarkScan(b *testing.B) {
	root := setupSite(b, 400)
	for _, policy := range []query.MatchPolicy{query.AnyLocated, query.AllRequired} {
		for _, jobs := range []int{1, 4} {
			b.Run(fmt.Sprintf("%s/jobs=%d", policy, jobs), func(b *testing.B) {
				q, err := query.New([]string{root}, []string{"signature", "lathe maintenance"}, query.WithPolicy(policy))
				if err != nil {
					b.Fatal(err)
				}
				s := scan.NewScanner(q, scan.WithJobs(jobs))
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := s.Run(context.Background(), cli.NewCollector()); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkEvaluate(b *testing.B) {
	page := e2e.BuildSite(1).Pages[0].HTML()
	text := ""
	for i := 0; i < 200; i++ {
		text += page
	}
	q, err := query.New(nil, []string{"signature", "<p"})
	if err != nil {
		b.Fatal(err)
	}
	s := scan.NewScanner(q)
	b.SetBytes(int64(len(text)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Evaluate("bench.htm", text)
	}
}
