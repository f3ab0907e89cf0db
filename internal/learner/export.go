package learner

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/faildex/faildex/internal/catalog"
)

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// ExportYAML renders candidates as a ready-to-review rule file in the
// catalog's own schema. Reviewers edit and drop stanzas, then load the
// file alongside the builtin rules.
func ExportYAML(candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", nil
	}

	rules := make([]*catalog.Rule, 0, len(candidates))
	seen := make(map[string]int)
	for _, c := range candidates {
		slug := slugRe.ReplaceAllString(strings.ToLower(c.Phrase), "-")
		slug = strings.Trim(slug, "-")
		if slug == "" {
			slug = "candidate"
		}
		if n := seen[slug]; n > 0 {
			slug = fmt.Sprintf("%s-%d", slug, n+1)
		}
		seen[slug]++

		rules = append(rules, &catalog.Rule{
			ID:      slug,
			Kind:    catalog.KindError,
			Pattern: c.Regex,
			Level:   c.SuggestedLevel,
			Tag:     c.SuggestedTag,
			Description: fmt.Sprintf("proposed from %d occurrences (confidence: %s)",
				c.SupportCount, c.Confidence),
		})
	}

	doc := struct {
		Version string          `yaml:"version"`
		Rules   []*catalog.Rule `yaml:"rules"`
	}{
		Version: "proposed",
		Rules:   rules,
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("rendering rule proposals: %w", err)
	}
	return string(out), nil
}
