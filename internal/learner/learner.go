// Package learner discovers recurring patterns in unmatched error lines
// and proposes catalog rules for human review. It never modifies the
// catalog itself.
package learner

import (
	"regexp"
	"sort"
	"strings"
)

// Confidence grades a candidate by how much evidence backs it.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Candidate is one proposed rule.
type Candidate struct {
	// Phrase is the anchoring 3-gram the cluster formed around.
	Phrase string `json:"phrase"`
	// Regex is the generalized pattern covering the cluster.
	Regex string `json:"regex"`
	// Samples holds up to three example lines.
	Samples        []string   `json:"samples"`
	SupportCount   int        `json:"support_count"`
	Confidence     Confidence `json:"confidence"`
	SuggestedLevel int        `json:"suggested_level"`
	SuggestedTag   string     `json:"suggested_tag"`
}

// Options tunes discovery. Zero values get defaults.
type Options struct {
	// MinSupport is the minimum number of lines backing a candidate.
	MinSupport int
	// MaxCandidates caps the number of proposals returned.
	MaxCandidates int
}

const (
	defaultMinSupport    = 3
	defaultMaxCandidates = 20
	maxSamples           = 3

	// Anchors shorter than this demote confidence one step: a pattern
	// with little literal text matches too much.
	minAnchorLen = 12
)

var tokenRe = regexp.MustCompile(`\S+`)

// Discover clusters lines around their most frequent 3-gram and proposes
// a generalized rule per cluster. Each line backs at most one candidate,
// so near-duplicate lines produce a single proposal instead of one per
// overlapping shingle.
func Discover(lines []string, opts Options) []Candidate {
	if opts.MinSupport <= 0 {
		opts.MinSupport = defaultMinSupport
	}
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = defaultMaxCandidates
	}

	type lineTokens struct {
		text   string
		tokens []string
	}
	var parsed []lineTokens
	freq := make(map[string]int)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		toks := tokenRe.FindAllString(line, -1)
		parsed = append(parsed, lineTokens{text: line, tokens: toks})
		seen := make(map[string]struct{})
		for i := 0; i+3 <= len(toks); i++ {
			phrase := strings.Join(toks[i:i+3], " ")
			if _, ok := seen[phrase]; ok {
				continue
			}
			seen[phrase] = struct{}{}
			freq[phrase]++
		}
	}

	// Assign every line to its single best phrase: highest frequency,
	// then longest phrase, then lexical order for determinism.
	clusters := make(map[string][]lineTokens)
	for _, lt := range parsed {
		best := ""
		for i := 0; i+3 <= len(lt.tokens); i++ {
			phrase := strings.Join(lt.tokens[i:i+3], " ")
			if freq[phrase] < opts.MinSupport {
				continue
			}
			if best == "" || betterPhrase(phrase, best, freq) {
				best = phrase
			}
		}
		if best != "" {
			clusters[best] = append(clusters[best], lt)
		}
	}

	var out []Candidate
	for phrase, members := range clusters {
		if len(members) < opts.MinSupport {
			continue
		}
		tokenLists := make([][]string, len(members))
		samples := make([]string, 0, maxSamples)
		var clusterText strings.Builder
		for i, m := range members {
			tokenLists[i] = m.tokens
			if len(samples) < maxSamples {
				samples = append(samples, m.text)
			}
			clusterText.WriteString(strings.ToLower(m.text))
			clusterText.WriteByte(' ')
		}

		pattern, anchorLen := generalize(tokenLists)
		if _, err := regexp.Compile(pattern); err != nil {
			continue
		}
		level, tag := guessErrorType(clusterText.String())

		out = append(out, Candidate{
			Phrase:         phrase,
			Regex:          pattern,
			Samples:        samples,
			SupportCount:   len(members),
			Confidence:     confidence(len(members), anchorLen),
			SuggestedLevel: level,
			SuggestedTag:   tag,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SupportCount != out[j].SupportCount {
			return out[i].SupportCount > out[j].SupportCount
		}
		return out[i].Phrase < out[j].Phrase
	})
	if len(out) > opts.MaxCandidates {
		out = out[:opts.MaxCandidates]
	}
	return out
}

func betterPhrase(a, b string, freq map[string]int) bool {
	if freq[a] != freq[b] {
		return freq[a] > freq[b]
	}
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a < b
}

var (
	numberRe = regexp.MustCompile(`^\d+$`)
	hexRe    = regexp.MustCompile(`^0x[0-9a-fA-F]+$`)
	pathRe   = regexp.MustCompile(`^/[\w/.\-]+$`)
)

// generalize builds a regex from the cluster's common token prefix and
// suffix, wildcarding the varying middle. Volatile tokens (numbers, hex
// addresses, paths) become character classes even inside the common
// parts. Returns the pattern and the total literal anchor length.
func generalize(lines [][]string) (pattern string, anchorLen int) {
	shortest := len(lines[0])
	for _, l := range lines[1:] {
		if len(l) < shortest {
			shortest = len(l)
		}
	}

	pre := 0
	for pre < shortest && allEqualAt(lines, pre, false) {
		pre++
	}
	suf := 0
	for suf < shortest-pre && allEqualAt(lines, suf+1, true) {
		suf++
	}

	middle := false
	for _, l := range lines {
		if len(l) > pre+suf {
			middle = true
			break
		}
	}

	var parts []string
	for i := 0; i < pre; i++ {
		p, lit := generalizeToken(lines[0][i])
		parts = append(parts, p)
		anchorLen += lit
	}
	if middle {
		parts = append(parts, ".*")
	}
	for i := suf; i > 0; i-- {
		p, lit := generalizeToken(lines[0][len(lines[0])-i])
		parts = append(parts, p)
		anchorLen += lit
	}
	return strings.Join(parts, `\s+`), anchorLen
}

// allEqualAt checks token equality at prefix index i, or at suffix
// offset i from the end when fromEnd is set.
func allEqualAt(lines [][]string, i int, fromEnd bool) bool {
	get := func(l []string) string {
		if fromEnd {
			return l[len(l)-i]
		}
		return l[i]
	}
	first := get(lines[0])
	for _, l := range lines[1:] {
		if get(l) != first {
			return false
		}
	}
	return true
}

// generalizeToken returns the regex fragment for one token and its
// literal length (zero for wildcarded tokens).
func generalizeToken(tok string) (string, int) {
	switch {
	case hexRe.MatchString(tok):
		return `0x[0-9a-fA-F]+`, 0
	case numberRe.MatchString(tok):
		return `\d+`, 0
	case pathRe.MatchString(tok):
		return `\S+`, 0
	}
	return regexp.QuoteMeta(tok), len(tok)
}

// Indicator families for level/tag suggestions, most severe first.
var errorFamilies = []struct {
	keywords []string
	level    int
	tag      string
}{
	{[]string{"fatal", "critical", "panic", "abort"}, 9, "auto:fatal"},
	{[]string{"crash", "segfault", "sigsegv", "coredump"}, 8, "auto:crash"},
	{[]string{"memory", "malloc", "alloc", "heap", "leak"}, 7, "auto:memory"},
	{[]string{"timeout", "hang", "deadlock", "freeze"}, 6, "auto:timeout"},
	{[]string{"assert", "assertion", "invariant"}, 6, "auto:assertion"},
	{[]string{"null", "nullptr", "nil"}, 5, "auto:null_pointer"},
}

func guessErrorType(lowerText string) (int, string) {
	for _, fam := range errorFamilies {
		for _, kw := range fam.keywords {
			if strings.Contains(lowerText, kw) {
				return fam.level, fam.tag
			}
		}
	}
	return 5, "auto:error"
}

func confidence(support, anchorLen int) Confidence {
	var c Confidence
	switch {
	case support >= 10:
		c = ConfidenceHigh
	case support >= 5:
		c = ConfidenceMedium
	default:
		c = ConfidenceLow
	}
	if anchorLen < minAnchorLen {
		switch c {
		case ConfidenceHigh:
			c = ConfidenceMedium
		case ConfidenceMedium:
			c = ConfidenceLow
		}
	}
	return c
}
