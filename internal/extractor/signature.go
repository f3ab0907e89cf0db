package extractor

import "errors"

// ErrNoSignature is returned when a scan completes without any error-rule
// match. It is a reportable outcome, not a fault: callers decide whether
// "no failure found" is good news or a scan-budget problem.
var ErrNoSignature = errors.New("no failure signature found")

// FailureSignature is the distilled result of scanning one failure log.
type FailureSignature struct {
	Suite string `json:"suite"`
	Test  string `json:"test"`
	Tool  string `json:"tool"`

	// Signature is the trimmed text of the highest-level matching line.
	Signature  string `json:"signature"`
	Level      int    `json:"level"`
	Tag        string `json:"tag"`
	LineNumber int    `json:"line_number"`
	Offset     int64  `json:"offset"`

	// Keywords are search terms derived from the signature text, or from
	// the test name when the signature yields none.
	Keywords []string `json:"keywords"`

	// Context holds the lines immediately preceding the signature line,
	// oldest first, plus the line itself.
	Context []string `json:"context,omitempty"`

	LinesScanned int `json:"lines_scanned"`

	// Degraded marks a signature built without log content (input
	// unavailable): level 1, keywords from the test name only.
	Degraded bool `json:"degraded,omitempty"`
}

// ErrorHit is one matching line from an exhaustive scan.
type ErrorHit struct {
	Line       string `json:"line"`
	LineNumber int    `json:"line_number"`
	Level      int    `json:"level"`
	Tag        string `json:"tag"`
}
