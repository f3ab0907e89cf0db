package textnorm

import "regexp"

// Technical tokens are preserved whole: splitting or stemming them would
// destroy exactly the parts of a failure line worth matching on.
var techTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b0x[0-9a-fA-F]+\b`),          // hex literals
	regexp.MustCompile(`\b[a-z]+_[a-z_]+\b`),          // snake_case identifiers
	regexp.MustCompile(`\b[a-z_]+\(\)`),               // function() references
	regexp.MustCompile(`\b[A-Z]{2,}\b`),               // DMA, UVM, SIGSEGV
	regexp.MustCompile(`(?i)(?:error|errno)\s*=?\s*\d+`), // error codes
}

const maxTechTokens = 5

// TechTokens extracts technical tokens from text in pattern order,
// deduplicated, capped at maxTechTokens.
func TechTokens(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, re := range techTokenPatterns {
		for _, m := range re.FindAllString(text, -1) {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
			if len(out) >= maxTechTokens {
				return out
			}
		}
	}
	return out
}
