// Package formatter renders extraction and ranking outcomes for
// terminals, JSON consumers, Markdown reports and CSV pipelines.
package formatter

import (
	"fmt"

	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/learner"
	"github.com/faildex/faildex/internal/similarity"
)

// Report bundles one failure's extraction and ranking outcome.
type Report struct {
	LogPath   string
	Signature *extractor.FailureSignature
	Matches   []similarity.MatchResult
	Issues    []similarity.CandidateIssue
	Skipped   int
}

// Formatter defines the interface for output formatting.
type Formatter interface {
	Format(report *Report) ([]byte, error)
	FormatCandidates(candidates []learner.Candidate) ([]byte, error)
}

// New returns the formatter for a format name.
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "markdown":
		return NewMarkdown(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// issueSummaries indexes candidate summaries by issue ID for display
// next to match results.
func issueSummaries(report *Report) map[string]string {
	out := make(map[string]string, len(report.Issues))
	for _, issue := range report.Issues {
		out[issue.ID] = issue.Summary
	}
	return out
}

// truncate shortens s to at most n runes, marking the cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
