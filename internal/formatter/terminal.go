package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/faildex/faildex/internal/learner"
)

// terminalFormatter formats output as plain text for terminal display
// using go-termfmt.
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support.
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder

	f.writeSignature(&b, report)
	if report.Signature != nil {
		f.writeMatches(&b, report)
	}
	return []byte(b.String()), nil
}

// writeSignature writes the extracted signature as a tree view.
func (f *terminalFormatter) writeSignature(b *strings.Builder, report *Report) {
	sig := report.Signature
	symbol := termfmt.GetEmoji("error", f.opts)
	if report.LogPath != "" {
		b.WriteString(symbol + " Failure Signature - " + report.LogPath + "\n")
	} else {
		b.WriteString(symbol + " Failure Signature\n")
	}
	if sig == nil {
		b.WriteString("└─ no error lines matched\n\n")
		return
	}

	items := []termfmt.TreeItem{
		{Label: "Signature", Value: truncate(sig.Signature, 100)},
		{Label: "Level", Value: fmt.Sprintf("%d", sig.Level)},
	}
	if sig.Tag != "" {
		items = append(items, termfmt.TreeItem{Label: "Tag", Value: sig.Tag})
	}
	if sig.Suite != "" || sig.Test != "" {
		items = append(items, termfmt.TreeItem{Label: "Test", Value: strings.TrimPrefix(sig.Suite+"/"+sig.Test, "/")})
	}
	if sig.Tool != "" {
		items = append(items, termfmt.TreeItem{Label: "Tool", Value: sig.Tool})
	}
	if sig.Degraded {
		items = append(items, termfmt.TreeItem{Label: "Source", Value: "test name only (log unavailable)"})
	} else {
		items = append(items, termfmt.TreeItem{Label: "Line", Value: fmt.Sprintf("%d", sig.LineNumber)})
	}
	items = append(items, termfmt.TreeItem{
		Label: "Keywords",
		Value: strings.Join(sig.Keywords, " "),
		Last:  true,
	})

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeMatches writes ranked candidates with score bars.
func (f *terminalFormatter) writeMatches(b *strings.Builder, report *Report) {
	symbol := termfmt.GetEmoji("insight", f.opts)
	b.WriteString(symbol + " Ranked Candidates\n")

	if len(report.Matches) == 0 {
		b.WriteString("└─ no candidates to rank\n")
		return
	}

	summaries := issueSummaries(report)
	for i, m := range report.Matches {
		bar := termfmt.CreateConfidenceBar(m.Score, f.opts)
		connector := "├─"
		if i == len(report.Matches)-1 {
			connector = "└─"
		}
		fmt.Fprintf(b, "%s %d. %-12s %s %.2f\n", connector, m.Rank, m.IssueID, bar, m.Score)
		if summary := summaries[m.IssueID]; summary != "" {
			prefix := "│"
			if i == len(report.Matches)-1 {
				prefix = " "
			}
			fmt.Fprintf(b, "%s     %s\n", prefix, truncate(summary, 80))
		}
	}
	if report.Skipped > 0 {
		fmt.Fprintf(b, "\n%d malformed candidate(s) skipped\n", report.Skipped)
	}
}

func (f *terminalFormatter) FormatCandidates(candidates []learner.Candidate) ([]byte, error) {
	var b strings.Builder

	symbol := termfmt.GetEmoji("pattern", f.opts)
	fmt.Fprintf(&b, "%s Proposed Rules (%d)\n", symbol, len(candidates))

	if len(candidates) == 0 {
		b.WriteString("└─ no recurring error shapes found\n")
		return []byte(b.String()), nil
	}

	for i, c := range candidates {
		connector := "├─"
		prefix := "│"
		if i == len(candidates)-1 {
			connector = "└─"
			prefix = " "
		}
		bar := termfmt.CreateConfidenceBar(confidenceScore(c.Confidence), f.opts)
		fmt.Fprintf(&b, "%s %s %s (%d occurrences, level %d)\n",
			connector, bar, c.Confidence, c.SupportCount, c.SuggestedLevel)
		fmt.Fprintf(&b, "%s     %s\n", prefix, c.Regex)
		for _, sample := range c.Samples {
			fmt.Fprintf(&b, "%s       %s\n", prefix, truncate(sample, 90))
		}
	}
	return []byte(b.String()), nil
}

// confidenceScore maps the discrete confidence grades onto the bar scale.
func confidenceScore(c learner.Confidence) float64 {
	switch c {
	case learner.ConfidenceHigh:
		return 0.9
	case learner.ConfidenceMedium:
		return 0.6
	default:
		return 0.3
	}
}
