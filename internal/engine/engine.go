// Package engine ties the pipeline together: signature extraction,
// candidate ranking, pattern discovery and feedback training behind one
// façade.
package engine

import (
	"context"
	"io"
	"runtime"

	"github.com/faildex/faildex/internal/catalog"
	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/feedback"
	"github.com/faildex/faildex/internal/learner"
	"github.com/faildex/faildex/internal/similarity"
)

// Config assembles an engine. Zero values get sensible defaults.
type Config struct {
	// Catalog defaults to the builtin rule set.
	Catalog *catalog.Catalog
	// Weights defaults to the balanced preset.
	Weights similarity.Weights
	// Model seeds the feedback ranker; nil means rank purely by
	// similarity until Train installs one.
	Model *feedback.Model
	// Workers bounds batch parallelism; defaults to GOMAXPROCS.
	Workers int
}

// Engine is safe for concurrent use: the catalog, scorer weights and
// model artifact are all immutable or atomically swapped.
type Engine struct {
	provider *catalog.Provider
	scorer   *similarity.Scorer
	ranker   *feedback.Ranker
	workers  int
}

// New builds an engine from cfg.
func New(cfg Config) (*Engine, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Builtin()
	}
	w := cfg.Weights
	if w == (similarity.Weights{}) {
		var err error
		if w, err = similarity.PresetWeights(similarity.DefaultPreset); err != nil {
			return nil, err
		}
	}
	scorer, err := similarity.NewScorer(w)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{
		provider: catalog.NewProvider(cat),
		scorer:   scorer,
		ranker:   feedback.NewRanker(cfg.Model),
		workers:  workers,
	}, nil
}

// SwapCatalog installs a new catalog for subsequent scans. Scans in
// flight keep the catalog they started with.
func (e *Engine) SwapCatalog(cat *catalog.Catalog) {
	e.provider.Swap(cat)
}

// Catalog returns the catalog currently in effect.
func (e *Engine) Catalog() *catalog.Catalog { return e.provider.Current() }

// ext builds an extractor over the current catalog. Constructed per call
// so a swapped catalog takes effect on the next scan, not mid-scan.
func (e *Engine) ext() *extractor.Extractor {
	return extractor.New(e.provider.Current())
}

// Analyze extracts the failure signature from a log stream.
func (e *Engine) Analyze(ctx context.Context, src io.Reader, opts extractor.Options) (*extractor.FailureSignature, error) {
	return e.ext().Analyze(ctx, src, opts)
}

// AnalyzeFile extracts the failure signature from a log file, degrading
// to a test-name signature when the file is unavailable.
func (e *Engine) AnalyzeFile(ctx context.Context, path string, opts extractor.Options) (*extractor.FailureSignature, error) {
	return e.ext().AnalyzeFile(ctx, path, opts)
}

// ExtractAll returns every matching error line, feeding discovery.
func (e *Engine) ExtractAll(ctx context.Context, src io.Reader, max int) ([]extractor.ErrorHit, error) {
	return e.ext().ExtractAll(ctx, src, max)
}

// Rank orders candidates against a signature, applying the feedback
// model when one is trained. Returns results plus the count of malformed
// candidates skipped.
func (e *Engine) Rank(sig *extractor.FailureSignature, issues []similarity.CandidateIssue) ([]similarity.MatchResult, int) {
	q := similarity.Query{Text: sig.Signature, Keywords: sig.Keywords}
	matches, skipped := e.scorer.Rank(q, issues)
	matches = e.ranker.Rerank(sig.Signature, matches, issues)
	return matches, skipped
}

// Discover proposes catalog rules from unmatched error lines.
func (e *Engine) Discover(lines []string, opts learner.Options) []learner.Candidate {
	return learner.Discover(lines, opts)
}

// Train fits the relevance model and, when training runs, installs the
// artifact for subsequent Rank calls.
func (e *Engine) Train(records []feedback.Record) (*feedback.Model, feedback.SkipReason, error) {
	m, skip, err := feedback.Train(records)
	if err != nil {
		return nil, skip, err
	}
	if m != nil {
		e.ranker.SetModel(m)
	}
	return m, skip, nil
}

// Model returns the active relevance model, nil when untrained.
func (e *Engine) Model() *feedback.Model { return e.ranker.Model() }
