package similarity

import (
	"fmt"
	"strings"

	"github.com/faildex/faildex/internal/textnorm"
)

// Weights blends the four similarity components. They need not sum to 1;
// scoring normalizes by the total.
type Weights struct {
	Jaccard  float64 `yaml:"jaccard" json:"jaccard"`
	Cosine   float64 `yaml:"cosine" json:"cosine"`
	Edit     float64 `yaml:"edit" json:"edit"`
	Semantic float64 `yaml:"semantic" json:"semantic"`
}

func (w Weights) total() float64 {
	return w.Jaccard + w.Cosine + w.Edit + w.Semantic
}

// Validate rejects weights that cannot produce a score.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"jaccard": w.Jaccard, "cosine": w.Cosine, "edit": w.Edit, "semantic": w.Semantic,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative", name)
		}
	}
	if w.total() <= 0 {
		return fmt.Errorf("weights sum to zero")
	}
	return nil
}

// Named weight presets. "lexical" is the classic keyword-dominated blend;
// "semantic" leans on synonym families for sparse signatures.
var presets = map[string]Weights{
	"balanced": {Jaccard: 0.4, Cosine: 0.25, Edit: 0.15, Semantic: 0.2},
	"lexical":  {Jaccard: 0.5, Cosine: 0.3, Edit: 0.2, Semantic: 0},
	"semantic": {Jaccard: 0.3, Cosine: 0.2, Edit: 0.1, Semantic: 0.4},
}

// DefaultPreset is used when configuration names none.
const DefaultPreset = "balanced"

// PresetWeights resolves a preset by name.
func PresetWeights(name string) (Weights, error) {
	if name == "" {
		name = DefaultPreset
	}
	w, ok := presets[strings.ToLower(name)]
	if !ok {
		return Weights{}, fmt.Errorf("unknown weight preset %q", name)
	}
	return w, nil
}

// PresetNames lists the available presets for help text and validation
// messages.
func PresetNames() []string {
	return []string{"balanced", "lexical", "semantic"}
}

// Scorer scores and ranks candidates. It is stateless apart from the
// weights and safe for concurrent use.
type Scorer struct {
	w Weights
}

// NewScorer creates a scorer with the given weights.
func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{w: w}, nil
}

// queryTokens builds the signature-side token set: normalized signature
// text plus the pre-extracted keywords.
func queryTokens(q Query) *textnorm.TokenSet {
	text := q.Text
	if len(q.Keywords) > 0 {
		text += " " + strings.Join(q.Keywords, " ")
	}
	return textnorm.Normalize(text)
}

// score computes the blended score of one candidate. The vectorizer must
// be fitted on the candidate corpus; qVec is the query's vector in it.
func (s *Scorer) score(q Query, qSet *textnorm.TokenSet, qVec []float64, v *tfidfVectorizer, iss *CandidateIssue) MatchResult {
	iSet := textnorm.Normalize(iss.searchText())

	comp := Components{
		Jaccard:     jaccard(qSet, iSet),
		CosineTFIDF: cosine(qVec, v.vectorize(iSet.Tokens())),
		EditDist:    levenshteinRatio(strings.ToLower(q.Text), strings.ToLower(iss.Summary)),
		Semantic:    semanticOverlap(qSet, iSet),
	}

	score := (s.w.Jaccard*comp.Jaccard +
		s.w.Cosine*comp.CosineTFIDF +
		s.w.Edit*comp.EditDist +
		s.w.Semantic*comp.Semantic) / s.w.total()
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return MatchResult{IssueID: iss.ID, Score: score, Components: comp}
}

// jaccard is set overlap over exact tokens only.
func jaccard(a, b *textnorm.TokenSet) float64 {
	if a.Len() == 0 || b.Len() == 0 {
		return 0
	}
	inter := 0
	for _, tok := range a.Tokens() {
		if b.Contains(tok) {
			inter++
		}
	}
	union := a.Len() + b.Len() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// synonymMatchWeight discounts matches that only exist because synonym
// expansion manufactured the token on one side or the other.
const synonymMatchWeight = 0.5

// semanticOverlap is a weighted Jaccard over synonym-expanded sets:
// exact-to-exact matches count full, matches involving a synthetic token
// count at synonymMatchWeight.
func semanticOverlap(a, b *textnorm.TokenSet) float64 {
	ea, eb := a.ExpandSynonyms(), b.ExpandSynonyms()
	if ea.Len() == 0 || eb.Len() == 0 {
		return 0
	}

	var inter float64
	shared := 0
	for _, tok := range ea.Tokens() {
		if !eb.Contains(tok) {
			continue
		}
		shared++
		if ea.IsSynthetic(tok) || eb.IsSynthetic(tok) {
			inter += synonymMatchWeight
		} else {
			inter++
		}
	}
	union := ea.Len() + eb.Len() - shared
	if union == 0 {
		return 0
	}
	return inter / float64(union)
}
