package catalog

import (
	"fmt"
	"strings"
)

// RuleKind identifies the rule variant. Ignore rules are evaluated before
// error rules; warning rules participate only when warnings are being
// treated as errors.
type RuleKind string

const (
	KindIgnore            RuleKind = "ignore"
	KindConditionalIgnore RuleKind = "ignore_unless"
	KindError             RuleKind = "error"
	KindWarning           RuleKind = "warning"
)

// Rule is a single classification rule as loaded from YAML. A rule is
// immutable once the catalog is compiled.
type Rule struct {
	ID      string   `yaml:"id" json:"id"`
	Kind    RuleKind `yaml:"kind" json:"kind"`
	Pattern string   `yaml:"pattern" json:"pattern"`
	// Exception only applies to ignore_unless rules: when the exception
	// pattern also matches, the line is NOT ignored and falls through to
	// error-rule evaluation.
	Exception   string `yaml:"exception,omitempty" json:"exception,omitempty"`
	Level       int    `yaml:"level,omitempty" json:"level,omitempty"`
	Tag         string `yaml:"tag,omitempty" json:"tag,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	CaseFold    bool   `yaml:"case_insensitive,omitempty" json:"case_insensitive,omitempty"`
}

const (
	// MinLevel and MaxLevel bound rule severity. Higher means a more
	// specific, more certain error pattern.
	MinLevel = 1
	MaxLevel = 10
)

// Validate checks structural correctness of a rule definition. A broken
// rule definition is fatal at load time.
func (r *Rule) Validate() error {
	if r.Pattern == "" {
		return fmt.Errorf("rule %q: empty pattern", r.ID)
	}
	switch r.Kind {
	case KindIgnore:
		if r.Exception != "" {
			return fmt.Errorf("rule %q: plain ignore rule cannot carry an exception (use ignore_unless)", r.ID)
		}
	case KindConditionalIgnore:
		if r.Exception == "" {
			return fmt.Errorf("rule %q: ignore_unless rule requires an exception pattern", r.ID)
		}
	case KindError, KindWarning:
		if r.Level < MinLevel || r.Level > MaxLevel {
			return fmt.Errorf("rule %q: level %d out of range [%d,%d]", r.ID, r.Level, MinLevel, MaxLevel)
		}
		if r.Tag == "" {
			return fmt.Errorf("rule %q: %s rule requires a tag", r.ID, r.Kind)
		}
	default:
		return fmt.Errorf("rule %q: unknown kind %q", r.ID, r.Kind)
	}
	return nil
}

// OutcomeKind is the result category of classifying one line.
type OutcomeKind int

const (
	// OutcomeNone means no rule matched the line.
	OutcomeNone OutcomeKind = iota
	// OutcomeIgnored means an ignore rule matched (and no exception held).
	OutcomeIgnored
	// OutcomeMatched means an error (or, under warnings-as-errors, a
	// warning) rule matched.
	OutcomeMatched
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeMatched:
		return "matched"
	default:
		return "none"
	}
}

// Outcome is the classification result for a single line.
type Outcome struct {
	Kind  OutcomeKind
	Level int
	Tag   string
}

// ParseKind parses a rule kind string, accepting a few aliases seen in
// hand-written rule files.
func ParseKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore":
		return KindIgnore, nil
	case "ignore_unless", "conditional_ignore":
		return KindConditionalIgnore, nil
	case "error":
		return KindError, nil
	case "warning", "warn":
		return KindWarning, nil
	}
	return "", fmt.Errorf("unknown rule kind %q", s)
}
