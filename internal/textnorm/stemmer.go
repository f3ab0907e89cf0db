package textnorm

import "strings"

// suffixRule strips suffix and appends replace, keeping at least minRemain
// characters of stem.
type suffixRule struct {
	suffix    string
	replace   string
	minRemain int
}

var suffixRules = []suffixRule{
	{"ization", "ize", 3},
	{"ational", "ate", 3},
	{"ation", "", 3},
	{"ment", "", 3},
	{"ness", "", 3},
	{"ing", "", 3},
	{"ion", "", 3},
	{"ity", "", 3},
	{"ate", "", 3},
	{"ful", "", 3},
	{"ed", "", 3},
	{"ly", "", 3},
}

// stem is a Porter-style suffix stripper reduced to the failure-log
// vocabulary. It runs to a fixed point, so stemming a stem is a no-op and
// normalization stays idempotent.
func stem(word string) string {
	for {
		next := stemOnce(word)
		if next == word {
			return word
		}
		word = next
	}
}

func stemOnce(w string) string {
	if len(w) <= 3 {
		return w
	}

	// Plurals first.
	switch {
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") &&
		!strings.HasSuffix(w, "us") &&
		!strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	}

	for _, r := range suffixRules {
		if !strings.HasSuffix(w, r.suffix) {
			continue
		}
		remain := len(w) - len(r.suffix)
		if remain < r.minRemain {
			continue
		}
		out := w[:remain] + r.replace
		if r.suffix == "ing" || r.suffix == "ed" {
			out = undouble(out)
		}
		return out
	}
	return w
}

// undouble collapses a trailing doubled consonant (running -> runn -> run).
func undouble(w string) string {
	n := len(w)
	if n < 4 {
		return w
	}
	last := w[n-1]
	if last != w[n-2] {
		return w
	}
	switch last {
	case 'a', 'e', 'i', 'o', 'u', 's', 'l', 'z':
		return w
	}
	return w[:n-1]
}
