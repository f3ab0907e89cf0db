package feedback

import (
	"regexp"
	"strings"

	"github.com/faildex/faildex/internal/similarity"
)

// FeatureDim is the fixed width of the relevance feature vector:
// TF-IDF similarity, keyword overlap, eight error-family co-occurrence
// features, two length features, and an error-code flag.
const FeatureDim = 13

// featureFamilies drive the co-occurrence features. Order is part of the
// model contract: a trained artifact only fits this exact layout.
var featureFamilies = []struct {
	name     string
	keywords []string
}{
	{"memory", []string{"memory", "malloc", "alloc", "heap", "leak", "oom"}},
	{"crash", []string{"crash", "segfault", "sigsegv", "abort", "coredump"}},
	{"timeout", []string{"timeout", "hang", "freeze", "stuck", "deadlock"}},
	{"assertion", []string{"assert", "assertion", "invariant"}},
	{"null_pointer", []string{"null", "nullptr", "nil", "undefined"}},
	{"io_error", []string{"io", "read", "write", "file", "disk"}},
	{"network", []string{"network", "socket", "connection"}},
	{"gpu", []string{"gpu", "cuda", "opencl", "graphics", "render"}},
}

var errorCodeRe = regexp.MustCompile(`0x[0-9a-f]+|error\s+\d+`)

// extractFeatures builds the feature vector for one signature/issue pair.
func extractFeatures(signature, issueSummary, issueDescription string) []float64 {
	sigText := strings.ToLower(signature)
	issueText := strings.ToLower(strings.TrimSpace(issueSummary + " " + issueDescription))

	f := make([]float64, 0, FeatureDim)

	// 1. TF-IDF similarity.
	if sigText != "" && issueText != "" {
		f = append(f, similarity.TextCosine(sigText, issueText))
	} else {
		f = append(f, 0)
	}

	// 2. Raw word overlap, as a fraction of the signature's words.
	sigWords := fieldsSet(sigText)
	issueWords := fieldsSet(issueText)
	if len(sigWords) > 0 {
		shared := 0
		for w := range sigWords {
			if _, ok := issueWords[w]; ok {
				shared++
			}
		}
		f = append(f, float64(shared)/float64(len(sigWords)))
	} else {
		f = append(f, 0)
	}

	// 3-10. Family co-occurrence: 1 when both sides mention the family,
	// 0.5 when only one does.
	for _, fam := range featureFamilies {
		inSig := containsAny(sigText, fam.keywords)
		inIssue := containsAny(issueText, fam.keywords)
		switch {
		case inSig && inIssue:
			f = append(f, 1)
		case inSig || inIssue:
			f = append(f, 0.5)
		default:
			f = append(f, 0)
		}
	}

	// 11-12. Saturating length features.
	f = append(f, min(float64(len(sigText))/100, 1))
	f = append(f, min(float64(len(issueText))/500, 1))

	// 13. Error-code presence.
	if errorCodeRe.MatchString(sigText) {
		f = append(f, 1)
	} else {
		f = append(f, 0)
	}

	return f
}

func fieldsSet(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		out[w] = struct{}{}
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
