package similarity

import (
	"math"

	"github.com/faildex/faildex/internal/textnorm"
)

// tfidfVectorizer is fitted on the candidate corpus per Rank call; the
// vocabulary is small (issue texts), so refitting is cheap and keeps the
// scorer stateless.
type tfidfVectorizer struct {
	vocab map[string]int
	idf   []float64
}

func fitTFIDF(docs [][]string) *tfidfVectorizer {
	v := &tfidfVectorizer{vocab: make(map[string]int)}

	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))
		for _, tok := range doc {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
			if _, ok := v.vocab[tok]; !ok {
				v.vocab[tok] = len(v.vocab)
			}
		}
	}

	n := float64(len(docs))
	v.idf = make([]float64, len(v.vocab))
	for tok, idx := range v.vocab {
		// Smoothed IDF keeps terms present in every document from
		// zeroing out entirely.
		v.idf[idx] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}
	return v
}

func (v *tfidfVectorizer) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(v.vocab))
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		if idx, ok := v.vocab[tok]; ok {
			vec[idx]++
		}
	}
	norm := float64(len(tokens))
	for i := range vec {
		vec[i] = vec[i] / norm * v.idf[i]
	}
	return vec
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TextCosine is the TF-IDF cosine between two standalone normalized
// texts, fitted on just that pair. Used by the feedback ranker's feature
// extraction.
func TextCosine(a, b string) float64 {
	da := textnorm.Normalize(a).Tokens()
	db := textnorm.Normalize(b).Tokens()
	v := fitTFIDF([][]string{da, db})
	return cosine(v.vectorize(da), v.vectorize(db))
}
