package textnorm

import (
	"regexp"
	"sort"
	"strings"
)

// stopwords filters glue words out of keyword extraction. Failure
// vocabulary (error, fail, crash, test, run, driver) is deliberately
// absent.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but in on at to for of with by from as is was were
		are be been being have has had do does did will would should could
		may might must can this that these those what which who when where
		why how all each every both few more most other some such no nor
		not only own same so than too very just now`) {
		stopwords[w] = struct{}{}
	}
}

var (
	nonWordRe  = regexp.MustCompile(`[^a-z0-9\s_]`)
	camelRe    = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	allDigitRe = regexp.MustCompile(`^[0-9]+$`)
)

// Normalize converts free text into a token set: technical tokens kept
// whole (lowercased, never stemmed), the rest lowercased, stripped of
// punctuation, stopword-filtered and stemmed. Normalizing the output
// again yields the same set.
func Normalize(text string) *TokenSet {
	ts := newTokenSet()
	if text == "" {
		return ts
	}

	for _, term := range TechTokens(text) {
		ts.add(strings.ToLower(term), false)
	}

	clean := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")
	for _, w := range strings.Fields(clean) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if allDigitRe.MatchString(w) {
			// Bare numbers only matter as error codes, which the
			// tech-token pass already captured.
			continue
		}
		ts.add(stem(w), false)
	}
	return ts
}

// Keywords extracts up to max search terms from text: technical tokens
// first, then stems ordered by descending frequency. All lowercase,
// deduplicated.
func Keywords(text string, max int) []string {
	if text == "" || max <= 0 {
		return nil
	}

	ordered := make([]string, 0, max)
	seen := make(map[string]struct{})
	push := func(tok string) bool {
		if _, ok := seen[tok]; ok {
			return len(ordered) < max
		}
		seen[tok] = struct{}{}
		ordered = append(ordered, tok)
		return len(ordered) < max
	}

	for _, term := range TechTokens(text) {
		if !push(strings.ToLower(term)) {
			return ordered
		}
	}

	clean := nonWordRe.ReplaceAllString(strings.ToLower(text), " ")
	freq := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(clean) {
		if len(w) < 3 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		s := stem(w)
		if freq[s] == 0 {
			order = append(order, s)
		}
		freq[s]++
	}
	// Frequency descending; first appearance breaks ties.
	pos := make(map[string]int, len(order))
	for i, s := range order {
		pos[s] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if freq[order[i]] != freq[order[j]] {
			return freq[order[i]] > freq[order[j]]
		}
		return pos[order[i]] < pos[order[j]]
	})
	for _, s := range order {
		if !push(s) {
			break
		}
	}
	return ordered
}

// TestNameKeywords derives search terms from a test name by naming
// convention: test_dma_transfer_basic yields [dma transfer basic].
func TestNameKeywords(name string) []string {
	if name == "" {
		return nil
	}

	lower := strings.ToLower(camelRe.ReplaceAllString(name, "${1}_${2}"))
	for _, prefix := range []string{"test_", "tc_", "testcase_"} {
		if strings.HasPrefix(lower, prefix) {
			lower = lower[len(prefix):]
			break
		}
	}

	var out []string
	for _, part := range strings.Split(lower, "_") {
		part = strings.TrimSpace(part)
		if len(part) <= 2 {
			continue
		}
		if _, stop := stopwords[part]; stop {
			continue
		}
		out = append(out, part)
	}
	return out
}
