package feedback

import (
	"sort"
	"sync/atomic"

	"github.com/faildex/faildex/internal/similarity"
)

// blendWeight is the model's share of a blended score; the similarity
// score keeps the rest.
const blendWeight = 0.5

// Ranker re-orders similarity results using the trained relevance model.
// The model is swapped atomically on retrain; readers in flight keep the
// artifact they started with.
type Ranker struct {
	model atomic.Pointer[Model]
}

// NewRanker creates a ranker, optionally seeded with a model.
func NewRanker(m *Model) *Ranker {
	r := &Ranker{}
	if m != nil {
		r.model.Store(m)
	}
	return r
}

// SetModel installs a new artifact.
func (r *Ranker) SetModel(m *Model) { r.model.Store(m) }

// Model returns the current artifact, nil when untrained.
func (r *Ranker) Model() *Model { return r.model.Load() }

// Rerank blends model probability into the similarity scores and
// re-sorts. With no trained model it returns matches unchanged, so the
// untrained path is exactly the scorer's ranking.
func (r *Ranker) Rerank(signature string, matches []similarity.MatchResult, issues []similarity.CandidateIssue) []similarity.MatchResult {
	m := r.model.Load()
	if m == nil || len(matches) == 0 {
		return matches
	}

	byID := make(map[string]*similarity.CandidateIssue, len(issues))
	for i := range issues {
		byID[issues[i].ID] = &issues[i]
	}

	out := make([]similarity.MatchResult, len(matches))
	copy(out, matches)
	for i := range out {
		iss, ok := byID[out[i].IssueID]
		if !ok {
			continue
		}
		p := m.Predict(signature, iss.Summary, iss.Description)
		out[i].Score = blendWeight*p + (1-blendWeight)*out[i].Score
	}

	// Stable: equal blended scores keep the scorer's tie-break order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
