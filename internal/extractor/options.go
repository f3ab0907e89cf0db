package extractor

import "errors"

// historySize is the number of trailing lines retained for match context.
const historySize = 10

// Options controls a single scan. The zero value scans the whole input.
type Options struct {
	// MaxLines stops the scan after this many lines. Zero means no limit.
	MaxLines int

	// EndsOnly scans only the first and last N bytes of the input,
	// skipping the middle. Zero means scan everything. Requires seekable
	// input and is mutually exclusive with MaxLines.
	EndsOnly int64

	// Suite, Test and Tool seed the signature; suite/test are otherwise
	// auto-detected from "# action:" lines, the tool from dv output.
	Suite string
	Test  string
	Tool  string

	// WarningsAsErrors promotes warning rules from the start of the
	// scan, instead of waiting for a compiler flag marker in the log.
	WarningsAsErrors bool
}

// ErrConflictingBudgets is returned when both scan budgets are set.
var ErrConflictingBudgets = errors.New("max-lines and ends-only budgets are mutually exclusive")

func (o Options) validate() error {
	if o.MaxLines > 0 && o.EndsOnly > 0 {
		return ErrConflictingBudgets
	}
	if o.MaxLines < 0 || o.EndsOnly < 0 {
		return errors.New("scan budget cannot be negative")
	}
	return nil
}
