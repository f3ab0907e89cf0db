package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/similarity"
)

// BatchItem is one independent failure to analyze and rank.
type BatchItem struct {
	// LogPath is the failure log to scan.
	LogPath string
	// Options seed the scan (suite/test hints, budgets).
	Options extractor.Options
	// Issues are the candidates to rank for this failure.
	Issues []similarity.CandidateIssue
}

// BatchResult pairs one item's outcome with its input index. NoSignature
// and per-item errors are outcomes, not batch failures.
type BatchResult struct {
	Index       int
	Signature   *extractor.FailureSignature
	Matches     []similarity.MatchResult
	Skipped     int
	NoSignature bool
	Err         error
}

// RankBatch fans independent failures across a bounded worker pool.
// Workers share only read-only artifacts (catalog, weights, model), so
// items never contend. The only batch-level error is cancellation.
func (e *Engine) RankBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	results := make([]BatchResult, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, item := range items {
		g.Go(func() error {
			res := BatchResult{Index: i}
			sig, err := e.AnalyzeFile(ctx, item.LogPath, item.Options)
			switch {
			case errors.Is(err, extractor.ErrNoSignature):
				res.NoSignature = true
			case err != nil:
				res.Err = err
			default:
				res.Signature = sig
				res.Matches, res.Skipped = e.Rank(sig, item.Issues)
			}
			results[i] = res
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
