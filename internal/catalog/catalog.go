package catalog

import (
	"fmt"
	"regexp"
)

// Catalog is an ordered, compiled rule set. It is immutable after
// Compile: Classify is a pure function of the line and the rule set, so a
// catalog may be shared across any number of concurrent scans without
// locking.
type Catalog struct {
	version  string
	ignores  []*compiledRule
	errors   []*compiledRule
	warnings []*compiledRule
}

type compiledRule struct {
	rule      *Rule
	regex     *regexp.Regexp
	exception *regexp.Regexp
}

// Compile validates and compiles rules into a catalog, preserving input
// order within each kind. Rule errors are fatal: a catalog is either
// fully usable or not loaded at all.
func Compile(version string, rules []*Rule) (*Catalog, error) {
	c := &Catalog{version: version}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		switch r.Kind {
		case KindIgnore, KindConditionalIgnore:
			c.ignores = append(c.ignores, cr)
		case KindError:
			c.errors = append(c.errors, cr)
		case KindWarning:
			c.warnings = append(c.warnings, cr)
		}
	}
	return c, nil
}

func compileRule(r *Rule) (*compiledRule, error) {
	pat := r.Pattern
	if r.CaseFold {
		pat = "(?i)" + pat
	}
	regex, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("rule %q: invalid pattern: %w", r.ID, err)
	}
	cr := &compiledRule{rule: r, regex: regex}
	if r.Exception != "" {
		exc, err := regexp.Compile(r.Exception)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid exception pattern: %w", r.ID, err)
		}
		cr.exception = exc
	}
	return cr, nil
}

// Version returns the version tag of the loaded rule definition.
func (c *Catalog) Version() string { return c.version }

// Len returns the total number of rules in the catalog.
func (c *Catalog) Len() int {
	return len(c.ignores) + len(c.errors) + len(c.warnings)
}

// Rules returns the rule definitions in catalog order.
func (c *Catalog) Rules() []*Rule {
	out := make([]*Rule, 0, c.Len())
	for _, groups := range [][]*compiledRule{c.ignores, c.errors, c.warnings} {
		for _, cr := range groups {
			out = append(out, cr.rule)
		}
	}
	return out
}

// Classify classifies a single log line.
//
// Ignore rules run first, in catalog order. An ignore_unless rule whose
// exception pattern also matches does not ignore the line; it falls
// through to error-rule evaluation. Error rules are all tried (never
// first-match-wins) and the highest level found is kept; ties at the same
// level keep the earliest rule in catalog order. Warning rules are only
// consulted when warningsAsErrors is set.
func (c *Catalog) Classify(line string, warningsAsErrors bool) Outcome {
	for _, cr := range c.ignores {
		if !cr.regex.MatchString(line) {
			continue
		}
		if cr.exception != nil && cr.exception.MatchString(line) {
			// Exception holds: not ignored after all.
			continue
		}
		return Outcome{Kind: OutcomeIgnored}
	}

	best := Outcome{Kind: OutcomeNone}
	for _, cr := range c.errors {
		if cr.regex.MatchString(line) && cr.rule.Level > best.Level {
			best = Outcome{Kind: OutcomeMatched, Level: cr.rule.Level, Tag: cr.rule.Tag}
		}
	}
	if best.Kind == OutcomeMatched {
		return best
	}

	if warningsAsErrors {
		for _, cr := range c.warnings {
			if cr.regex.MatchString(line) && cr.rule.Level > best.Level {
				best = Outcome{Kind: OutcomeMatched, Level: cr.rule.Level, Tag: cr.rule.Tag}
			}
		}
	}
	return best
}
