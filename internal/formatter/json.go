package formatter

import (
	"encoding/json"

	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/learner"
	"github.com/faildex/faildex/internal/similarity"
)

// jsonFormatter formats output as JSON.
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter.
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// ReportOutput is the JSON structure for a ranked failure report.
type ReportOutput struct {
	Log       string                      `json:"log,omitempty"`
	Signature *extractor.FailureSignature `json:"signature"`
	Matches   []*MatchOutput              `json:"matches"`
	Skipped   int                         `json:"skipped_candidates,omitempty"`
}

// MatchOutput pairs a match with the candidate summary it refers to.
type MatchOutput struct {
	Rank       int                   `json:"rank"`
	IssueID    string                `json:"issue_id"`
	Summary    string                `json:"summary,omitempty"`
	Score      float64               `json:"score"`
	Components similarity.Components `json:"components"`
}

// CandidatesOutput is the JSON structure for discovery results.
type CandidatesOutput struct {
	Candidates []learner.Candidate `json:"candidates"`
}

func (f *jsonFormatter) Format(report *Report) ([]byte, error) {
	summaries := issueSummaries(report)
	out := &ReportOutput{
		Log:       report.LogPath,
		Signature: report.Signature,
		Matches:   make([]*MatchOutput, 0, len(report.Matches)),
		Skipped:   report.Skipped,
	}
	for _, m := range report.Matches {
		out.Matches = append(out.Matches, &MatchOutput{
			Rank:       m.Rank,
			IssueID:    m.IssueID,
			Summary:    summaries[m.IssueID],
			Score:      m.Score,
			Components: m.Components,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}

func (f *jsonFormatter) FormatCandidates(candidates []learner.Candidate) ([]byte, error) {
	if candidates == nil {
		candidates = []learner.Candidate{}
	}
	return json.MarshalIndent(&CandidatesOutput{Candidates: candidates}, "", "  ")
}
