// Package textnorm turns failure text into comparable token sets:
// lowercase stems plus technical tokens kept whole, with optional
// synonym expansion for semantic matching.
package textnorm

import "sort"

// TokenSet is a normalized bag of tokens. Tokens added through synonym
// expansion are marked synthetic so scorers can weight them below exact
// matches.
type TokenSet struct {
	all       map[string]struct{}
	synthetic map[string]struct{}
}

func newTokenSet() *TokenSet {
	return &TokenSet{
		all:       make(map[string]struct{}),
		synthetic: make(map[string]struct{}),
	}
}

func (s *TokenSet) add(tok string, synthetic bool) {
	if tok == "" {
		return
	}
	if _, ok := s.all[tok]; ok {
		// An exact token never becomes synthetic.
		return
	}
	s.all[tok] = struct{}{}
	if synthetic {
		s.synthetic[tok] = struct{}{}
	}
}

// Contains reports whether tok is in the set.
func (s *TokenSet) Contains(tok string) bool {
	_, ok := s.all[tok]
	return ok
}

// IsSynthetic reports whether tok entered the set through synonym
// expansion rather than from the text itself.
func (s *TokenSet) IsSynthetic(tok string) bool {
	_, ok := s.synthetic[tok]
	return ok
}

// Len returns the number of distinct tokens.
func (s *TokenSet) Len() int { return len(s.all) }

// Tokens returns all tokens in sorted order.
func (s *TokenSet) Tokens() []string {
	out := make([]string, 0, len(s.all))
	for tok := range s.all {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// ExactTokens returns only the non-synthetic tokens, sorted.
func (s *TokenSet) ExactTokens() []string {
	out := make([]string, 0, len(s.all))
	for tok := range s.all {
		if _, syn := s.synthetic[tok]; !syn {
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// clone copies the set including synthetic marks.
func (s *TokenSet) clone() *TokenSet {
	out := newTokenSet()
	for tok := range s.all {
		out.all[tok] = struct{}{}
	}
	for tok := range s.synthetic {
		out.synthetic[tok] = struct{}{}
	}
	return out
}
