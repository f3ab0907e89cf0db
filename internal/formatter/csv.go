package formatter

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/faildex/faildex/internal/learner"
)

// csvFormatter formats output as CSV for spreadsheet pipelines.
type csvFormatter struct{}

// NewCSV creates a new CSV formatter.
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"rank", "issue_id", "score", "jaccard", "cosine", "edit_distance", "semantic", "summary"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	summaries := issueSummaries(report)
	for _, m := range report.Matches {
		row := []string{
			strconv.Itoa(m.Rank),
			m.IssueID,
			formatFloat(m.Score),
			formatFloat(m.Components.Jaccard),
			formatFloat(m.Components.CosineTFIDF),
			formatFloat(m.Components.EditDist),
			formatFloat(m.Components.Semantic),
			summaries[m.IssueID],
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func (f *csvFormatter) FormatCandidates(candidates []learner.Candidate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"regex", "occurrences", "confidence", "level", "tag", "samples"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, c := range candidates {
		row := []string{
			c.Regex,
			strconv.Itoa(c.SupportCount),
			string(c.Confidence),
			strconv.Itoa(c.SuggestedLevel),
			c.SuggestedTag,
			strings.Join(c.Samples, " | "),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
