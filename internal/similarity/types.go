// Package similarity ranks candidate issues against a failure signature
// using lexical and semantic text similarity.
package similarity

import (
	"strings"
	"time"
)

// CandidateIssue is a read-only view of a tracker issue to rank against.
type CandidateIssue struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Comments    []string  `json:"comments,omitempty"`
	Status      string    `json:"status,omitempty"`
	Resolution  string    `json:"resolution,omitempty"`
	Labels      []string  `json:"labels,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// malformed reports whether the issue carries no text worth matching.
// Such records are skipped and counted, never fatal.
func (c *CandidateIssue) malformed() bool {
	return strings.TrimSpace(c.Summary) == "" && strings.TrimSpace(c.Description) == ""
}

// resolved reports whether the issue reached a terminal state. Resolved
// issues win score ties: they come with a known fix.
func (c *CandidateIssue) resolved() bool {
	switch strings.ToLower(c.Status) {
	case "resolved", "closed", "done":
		return true
	}
	return c.Resolution != ""
}

// searchText flattens the issue into one matching document. The summary
// counts double: it is the most curated text on the issue.
func (c *CandidateIssue) searchText() string {
	parts := []string{c.Summary, c.Summary, c.Description}
	parts = append(parts, c.Labels...)
	comments := c.Comments
	if len(comments) > 3 {
		comments = comments[:3]
	}
	parts = append(parts, comments...)
	return strings.Join(parts, " ")
}

// Components breaks a score into its constituent similarities, each in
// [0,1].
type Components struct {
	Jaccard     float64 `json:"jaccard"`
	CosineTFIDF float64 `json:"cosine_tfidf"`
	EditDist    float64 `json:"edit_distance"`
	Semantic    float64 `json:"semantic"`
}

// MatchResult is one ranked candidate.
type MatchResult struct {
	IssueID    string     `json:"issue_id"`
	Score      float64    `json:"score"`
	Components Components `json:"components"`
	Rank       int        `json:"rank"`
}

// Query is the signature side of a comparison.
type Query struct {
	// Text is the raw signature line.
	Text string
	// Keywords are pre-extracted search terms; they join the token set
	// used for the set-based components.
	Keywords []string
}
