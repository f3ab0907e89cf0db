// Package feedback learns from reviewer verdicts: it stores
// relevant/irrelevant labels, trains a small relevance model, and blends
// model probability into similarity rankings.
package feedback

import "time"

// Record is one reviewer verdict on a signature/issue pairing.
type Record struct {
	ID                int64     `json:"id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Test              string    `json:"test"`
	Signature         string    `json:"signature"`
	SignatureKeywords []string  `json:"signature_keywords,omitempty"`
	IssueID           string    `json:"issue_id"`
	IssueSummary      string    `json:"issue_summary"`
	IssueDescription  string    `json:"issue_description,omitempty"`
	Relevant          bool      `json:"relevant"`
}

// SkipReason explains why training did not produce a model. It is an
// outcome, not an error.
type SkipReason string

const (
	// SkipNone means training ran.
	SkipNone SkipReason = ""
	// SkipTooFewRecords means the corpus is below MinTrainRecords.
	SkipTooFewRecords SkipReason = "too few feedback records"
	// SkipSingleClass means every record carries the same label.
	SkipSingleClass SkipReason = "all records share one label"
)
