// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch runs extraction and feature scoring over whole corpora.
// A failure on one problem or sample is recorded and the run continues.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/wordproblem-engine/internal/features"
	"github.com/pdiddy/wordproblem-engine/pkg/types"
)

// UnknownFinder registers the quantities of a problem.
type UnknownFinder interface {
	FindUnknowns(p *types.Problem) error
}

// Scorer computes the features of every hypothesis of a sample.
type Scorer interface {
	Score(sample *types.Sample) ([]features.FeatureMap, error)
}

// Summary holds counts from a batch run.
type Summary struct {
	Succeeded int
	Failed    int
}

// Total returns the number of items processed.
func (s Summary) Total() int {
	return s.Succeeded + s.Failed
}

// HasFailures reports whether any item failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractResult is the outcome of extraction for one problem.
type ExtractResult struct {
	Problem *types.Problem
	Err     error
}

// ExtractAll runs finder on each problem in order. A failing problem is
// logged and counted; its quantities are left as the finder left them. The
// returned error is non-nil only when ctx is cancelled.
func ExtractAll(ctx context.Context, finder UnknownFinder, problems []*types.Problem, logger *slog.Logger) (Summary, []ExtractResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var summary Summary
	results := make([]ExtractResult, 0, len(problems))
	for _, p := range problems {
		select {
		case <-ctx.Done():
			return summary, results, ctx.Err()
		default:
		}

		err := finder.FindUnknowns(p)
		results = append(results, ExtractResult{Problem: p, Err: err})
		if err != nil {
			logger.Warn("extraction failed", "problem", p.ID, "error", err)
			summary.Failed++
			continue
		}
		logger.Info("extracted", "problem", p.ID, "quantities", p.Len())
		summary.Succeeded++
	}
	return summary, results, nil
}

// ScoreResult is the outcome of scoring one sample.
type ScoreResult struct {
	Index    int
	Sample   *types.Sample
	Features []features.FeatureMap
	Err      error
}

// ScoreAll scores samples concurrently on up to workers goroutines
// (NumCPU when workers <= 0). Each sample gets its own feature maps, so no
// state is shared between goroutines. Results are in input order.
func ScoreAll(ctx context.Context, scorer Scorer, samples []*types.Sample, workers int) (Summary, []ScoreResult) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	p := pool.NewWithResults[ScoreResult]().WithMaxGoroutines(workers)
	for i, s := range samples {
		p.Go(func() ScoreResult {
			if err := ctx.Err(); err != nil {
				return ScoreResult{Index: i, Sample: s, Err: err}
			}
			fms, err := scorer.Score(s)
			return ScoreResult{Index: i, Sample: s, Features: fms, Err: err}
		})
	}
	results := p.Wait()
	sort.Slice(results, func(a, b int) bool { return results[a].Index < results[b].Index })

	var summary Summary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary, results
}
