package similarity

import (
	"sort"

	"github.com/faildex/faildex/internal/textnorm"
)

// Rank scores every candidate and returns them in descending score order
// with 1-based ranks assigned, plus the number of malformed candidates
// skipped. Score ties prefer resolved issues, then the most recently
// updated, then the lexically smaller ID for determinism.
func (s *Scorer) Rank(q Query, issues []CandidateIssue) ([]MatchResult, int) {
	qSet := queryTokens(q)

	type scored struct {
		res MatchResult
		iss *CandidateIssue
	}

	kept := make([]*CandidateIssue, 0, len(issues))
	skipped := 0
	for i := range issues {
		if issues[i].malformed() {
			skipped++
			continue
		}
		kept = append(kept, &issues[i])
	}

	// Fit TF-IDF on the surviving corpus.
	docs := make([][]string, len(kept))
	for i, iss := range kept {
		docs[i] = textnorm.Normalize(iss.searchText()).Tokens()
	}
	v := fitTFIDF(docs)
	qVec := v.vectorize(qSet.Tokens())

	results := make([]scored, len(kept))
	for i, iss := range kept {
		results[i] = scored{res: s.score(q, qSet, qVec, v, iss), iss: iss}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.res.Score != b.res.Score {
			return a.res.Score > b.res.Score
		}
		if ar, br := a.iss.resolved(), b.iss.resolved(); ar != br {
			return ar
		}
		if !a.iss.UpdatedAt.Equal(b.iss.UpdatedAt) {
			return a.iss.UpdatedAt.After(b.iss.UpdatedAt)
		}
		return a.iss.ID < b.iss.ID
	})

	out := make([]MatchResult, len(results))
	for i, r := range results {
		r.res.Rank = i + 1
		out[i] = r.res
	}
	return out, skipped
}
