package formatter

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/faildex/faildex/internal/extractor"
	"github.com/faildex/faildex/internal/learner"
	"github.com/faildex/faildex/internal/similarity"
)

func sampleReport() *Report {
	return &Report{
		LogPath: "run.log",
		Signature: &extractor.FailureSignature{
			Suite:      "dma",
			Test:       "test_burst",
			Signature:  "Segmentation fault in dma_engine",
			Level:      10,
			Tag:        "crash:segfault",
			LineNumber: 42,
			Keywords:   []string{"dma_engine", "segment", "fault"},
		},
		Matches: []similarity.MatchResult{
			{IssueID: "PROJ-1", Score: 0.82, Rank: 1, Components: similarity.Components{Jaccard: 0.5}},
			{IssueID: "PROJ-2", Score: 0.10, Rank: 2},
		},
		Issues: []similarity.CandidateIssue{
			{ID: "PROJ-1", Summary: "dma_engine segfault under load"},
			{ID: "PROJ-2", Summary: "docs cleanup"},
		},
		Skipped: 1,
	}
}

func sampleCandidates() []learner.Candidate {
	return []learner.Candidate{
		{
			Phrase:         "unable to open file",
			Regex:          `unable\s+to\s+open\s+file\s+\S+`,
			Samples:        []string{"unable to open file /tmp/a"},
			SupportCount:   5,
			Confidence:     learner.ConfidenceMedium,
			SuggestedLevel: 5,
			SuggestedTag:   "auto:error",
		},
	}
}

func TestNewSelectsFormatter(t *testing.T) {
	for _, format := range []string{"text", "json", "markdown", "csv"} {
		if _, err := New(format, false); err != nil {
			t.Errorf("New(%q) error = %v", format, err)
		}
	}
	if _, err := New("xml", false); err == nil {
		t.Error("New(xml) = nil error, want failure")
	}
}

func TestJSONFormatRoundTrips(t *testing.T) {
	out, err := NewJSON().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var got ReportOutput
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Signature == nil || got.Signature.Level != 10 {
		t.Errorf("signature = %+v, want level 10", got.Signature)
	}
	if len(got.Matches) != 2 || got.Matches[0].IssueID != "PROJ-1" {
		t.Errorf("matches = %+v, want PROJ-1 first", got.Matches)
	}
	if got.Matches[0].Summary != "dma_engine segfault under load" {
		t.Errorf("summary = %q not joined from candidates", got.Matches[0].Summary)
	}
	if got.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", got.Skipped)
	}
}

func TestTerminalFormatContainsSections(t *testing.T) {
	out, err := NewTerminal(false).Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"Failure Signature",
		"Segmentation fault in dma_engine",
		"Ranked Candidates",
		"PROJ-1",
		"dma/test_burst",
		"1 malformed candidate(s) skipped",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("terminal output missing %q:\n%s", want, text)
		}
	}
}

func TestTerminalFormatNilSignature(t *testing.T) {
	out, err := NewTerminal(false).Format(&Report{LogPath: "x.log"})
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(string(out), "no error lines matched") {
		t.Errorf("output = %q, want a no-signature notice", out)
	}
}

func TestMarkdownFormat(t *testing.T) {
	out, err := NewMarkdown().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	text := string(out)

	for _, want := range []string{
		"# Failure Triage Report",
		"## Signature",
		"| Level | 10 |",
		"## Ranked Candidates",
		"| 1 | PROJ-1 |",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestCSVFormat(t *testing.T) {
	out, err := NewCSV().Format(sampleReport())
	if err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d CSV lines, want header + 2 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "rank,issue_id,score") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,PROJ-1,0.8200,0.5000") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestFormatCandidates(t *testing.T) {
	cands := sampleCandidates()

	out, err := NewTerminal(false).FormatCandidates(cands)
	if err != nil {
		t.Fatalf("terminal FormatCandidates() error = %v", err)
	}
	if !strings.Contains(string(out), "5 occurrences") {
		t.Errorf("terminal output missing support count:\n%s", out)
	}

	out, err = NewJSON().FormatCandidates(cands)
	if err != nil {
		t.Fatalf("json FormatCandidates() error = %v", err)
	}
	var got CandidatesOutput
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got.Candidates) != 1 || got.Candidates[0].SupportCount != 5 {
		t.Errorf("candidates = %+v", got.Candidates)
	}

	out, err = NewMarkdown().FormatCandidates(nil)
	if err != nil {
		t.Fatalf("markdown FormatCandidates() error = %v", err)
	}
	if !strings.Contains(string(out), "No recurring error shapes") {
		t.Errorf("markdown output = %q", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a very long line of text", 10); got != "a very ..." {
		t.Errorf("truncate() = %q", got)
	}
}
