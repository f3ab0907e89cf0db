package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/faildex/faildex/internal/learner"
)

// markdownFormatter formats output as Markdown.
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter.
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Failure Triage Report\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	if report.LogPath != "" {
		fmt.Fprintf(&b, "Log: `%s`\n\n", report.LogPath)
	}

	f.writeSignatureSection(&b, report)
	if report.Signature != nil {
		f.writeMatchesSection(&b, report)
	}
	return []byte(b.String()), nil
}

func (f *markdownFormatter) writeSignatureSection(b *strings.Builder, report *Report) {
	b.WriteString("## Signature\n\n")

	sig := report.Signature
	if sig == nil {
		b.WriteString("No error lines matched the rule catalog.\n\n")
		return
	}

	b.WriteString("| Field | Value |\n")
	b.WriteString("|-------|-------|\n")
	fmt.Fprintf(b, "| Signature | `%s` |\n", strings.ReplaceAll(sig.Signature, "|", "\\|"))
	fmt.Fprintf(b, "| Level | %d |\n", sig.Level)
	if sig.Tag != "" {
		fmt.Fprintf(b, "| Tag | %s |\n", sig.Tag)
	}
	if sig.Suite != "" || sig.Test != "" {
		fmt.Fprintf(b, "| Test | %s |\n", strings.TrimPrefix(sig.Suite+"/"+sig.Test, "/"))
	}
	if sig.Tool != "" {
		fmt.Fprintf(b, "| Tool | %s |\n", sig.Tool)
	}
	if sig.Degraded {
		b.WriteString("| Source | test name only (log unavailable) |\n")
	} else {
		fmt.Fprintf(b, "| Line | %d |\n", sig.LineNumber)
	}
	fmt.Fprintf(b, "| Keywords | %s |\n\n", strings.Join(sig.Keywords, ", "))

	if len(sig.Context) > 0 {
		b.WriteString("### Context\n\n```\n")
		for _, line := range sig.Context {
			b.WriteString(line + "\n")
		}
		b.WriteString("```\n\n")
	}
}

func (f *markdownFormatter) writeMatchesSection(b *strings.Builder, report *Report) {
	b.WriteString("## Ranked Candidates\n\n")

	if len(report.Matches) == 0 {
		b.WriteString("No candidates to rank.\n\n")
		return
	}

	summaries := issueSummaries(report)
	b.WriteString("| Rank | Issue | Score | Summary |\n")
	b.WriteString("|------|-------|-------|--------|\n")
	for _, m := range report.Matches {
		summary := strings.ReplaceAll(truncate(summaries[m.IssueID], 70), "|", "\\|")
		fmt.Fprintf(b, "| %d | %s | %.3f | %s |\n", m.Rank, m.IssueID, m.Score, summary)
	}
	b.WriteString("\n")

	if report.Skipped > 0 {
		fmt.Fprintf(b, "%d malformed candidate(s) were skipped.\n\n", report.Skipped)
	}
}

func (f *markdownFormatter) FormatCandidates(candidates []learner.Candidate) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Proposed Rules\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	if len(candidates) == 0 {
		b.WriteString("No recurring error shapes found.\n")
		return []byte(b.String()), nil
	}

	for i, c := range candidates {
		fmt.Fprintf(&b, "## Candidate %d\n\n", i+1)
		fmt.Fprintf(&b, "- Regex: `%s`\n", c.Regex)
		fmt.Fprintf(&b, "- Occurrences: %d\n", c.SupportCount)
		fmt.Fprintf(&b, "- Confidence: %s\n", c.Confidence)
		fmt.Fprintf(&b, "- Suggested level: %d (%s)\n\n", c.SuggestedLevel, c.SuggestedTag)
		if len(c.Samples) > 0 {
			b.WriteString("```\n")
			for _, sample := range c.Samples {
				b.WriteString(sample + "\n")
			}
			b.WriteString("```\n\n")
		}
	}
	return []byte(b.String()), nil
}
