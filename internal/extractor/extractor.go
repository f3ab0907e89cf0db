// Package extractor distills a failure log into a single FailureSignature
// by scanning every line against the rule catalog and keeping the
// highest-level match.
package extractor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/yildizm/go-logparser"

	"github.com/faildex/faildex/internal/catalog"
	"github.com/faildex/faildex/internal/textnorm"
)

var (
	// "# action: gc(...)::suite/test.tool" lines emitted by the test runner.
	actionRe = regexp.MustCompile(`^# action: gc\(.*\)::(\w+)/(\w+)\.(\S+)`)

	runningToolRe = regexp.MustCompile(`dv: \.\.\. running tool (\S+)`)
	failedToolRe  = regexp.MustCompile(`dv: tool (\S+) failed!`)

	warningsAsErrorsRe = regexp.MustCompile(`cc1plus: warnings being treated as errors`)

	logfmtRe = regexp.MustCompile(`^\w+=[^\s=]+(\s+\w+=\S+)+`)
)

const maxKeywords = 10

// Extractor scans logs against one immutable catalog. It is safe for
// concurrent use once constructed.
type Extractor struct {
	cat *catalog.Catalog
	lp  logparser.Parser
}

// New creates an extractor over the given catalog.
func New(cat *catalog.Catalog) *Extractor {
	return &Extractor{cat: cat, lp: logparser.New()}
}

// Analyze scans src in a single forward pass and returns the failure
// signature: the highest-level matching line, with ties resolved to the
// earliest occurrence. It never short-circuits on the first match.
// When no line matches, the error wraps ErrNoSignature.
//
// Options.EndsOnly requires src to implement io.ReadSeeker.
func (x *Extractor) Analyze(ctx context.Context, src io.Reader, opts Options) (*FailureSignature, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var size int64
	seeker, seekable := src.(io.ReadSeeker)
	if opts.EndsOnly > 0 {
		if !seekable {
			return nil, errors.New("ends-only scan requires seekable input")
		}
		var err error
		if size, err = seeker.Seek(0, io.SeekEnd); err != nil {
			return nil, fmt.Errorf("sizing input: %w", err)
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewinding input: %w", err)
		}
	}

	var (
		br      = bufio.NewReader(src)
		history []string

		suite       = opts.Suite
		test        = opts.Test
		currentTool = opts.Tool

		offset           int64
		lineNo           int
		warningsAsErrors = opts.WarningsAsErrors
		skippedMiddle    bool
		truncated        bool

		best catalog.Outcome
		sig  = &FailureSignature{}
	)

	for {
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		raw, rerr := br.ReadString('\n')
		if rerr != nil && rerr != io.EOF {
			return nil, fmt.Errorf("reading log: %w", rerr)
		}
		if raw == "" {
			break
		}

		lineNo++
		lineStart := offset
		offset += int64(len(raw))
		line := strings.TrimRight(raw, "\r\n")

		history = append(history, line)
		if len(history) > historySize {
			history = history[1:]
		}

		if opts.MaxLines > 0 && lineNo > opts.MaxLines {
			truncated = true
			break
		}

		// Head window exhausted: jump to the tail window.
		if opts.EndsOnly > 0 && !skippedMiddle && offset > opts.EndsOnly {
			skippedMiddle = true
			if tail := size - opts.EndsOnly; tail > offset {
				if _, err := seeker.Seek(tail, io.SeekStart); err != nil {
					return nil, fmt.Errorf("seeking to tail window: %w", err)
				}
				br.Reset(src)
				partial, perr := br.ReadString('\n')
				if perr != nil && perr != io.EOF {
					return nil, fmt.Errorf("reading log: %w", perr)
				}
				offset = tail + int64(len(partial))
				continue
			}
		}

		// Runner metadata lines never classify as failures.
		if suite == "" || test == "" {
			if m := actionRe.FindStringSubmatch(line); m != nil {
				suite, test = m[1], m[2]
				if currentTool == "" {
					currentTool = m[3]
				}
				continue
			}
		}
		if m := runningToolRe.FindStringSubmatch(line); m != nil {
			currentTool = m[1]
			continue
		}
		if m := failedToolRe.FindStringSubmatch(line); m != nil {
			currentTool = m[1]
			continue
		}
		if warningsAsErrorsRe.MatchString(line) {
			warningsAsErrors = true
			continue
		}

		text := line
		if msg := x.structuredMessage(line); msg != "" {
			text = msg
		}

		out := x.cat.Classify(text, warningsAsErrors)
		if out.Kind != catalog.OutcomeMatched {
			continue
		}
		if out.Level > best.Level {
			best = out
			sig.Signature = strings.TrimSpace(text)
			sig.Level = out.Level
			sig.Tag = out.Tag
			sig.LineNumber = lineNo
			sig.Offset = lineStart
			sig.Tool = currentTool
			sig.Context = append([]string(nil), history...)
		}
	}

	sig.Suite = suite
	sig.Test = test
	sig.LinesScanned = lineNo

	if best.Kind != catalog.OutcomeMatched {
		switch {
		case truncated:
			return nil, fmt.Errorf("no error line in first %d lines: %w", opts.MaxLines, ErrNoSignature)
		case skippedMiddle:
			return nil, fmt.Errorf("no error line in first/last %d bytes: %w", opts.EndsOnly, ErrNoSignature)
		default:
			return nil, ErrNoSignature
		}
	}

	if sig.Tool == "" {
		sig.Tool = currentTool
	}
	sig.Keywords = textnorm.Keywords(sig.Signature, maxKeywords)
	if len(sig.Keywords) == 0 && test != "" {
		sig.Keywords = textnorm.TestNameKeywords(test)
	}
	return sig, nil
}

// AnalyzeFile scans the log at path. A file that does not exist or cannot
// be opened for permission reasons degrades to a level-1 signature built
// from the test name; read errors mid-stream abort the scan.
func (x *Extractor) AnalyzeFile(ctx context.Context, path string, opts Options) (*FailureSignature, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return degradedSignature(opts, "log file not found"), nil
		}
		return nil, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()
	return x.Analyze(ctx, f, opts)
}

// degradedSignature builds the input-unavailable fallback: no line
// information, level pinned to the floor, keywords from the test name.
func degradedSignature(opts Options, reason string) *FailureSignature {
	return &FailureSignature{
		Suite:     opts.Suite,
		Test:      opts.Test,
		Tool:      opts.Tool,
		Signature: reason,
		Level:     catalog.MinLevel,
		Keywords:  textnorm.TestNameKeywords(opts.Test),
		Degraded:  true,
	}
}

// ExtractAll returns every matching error line up to max, in log order.
// Unlike Analyze it does not rank by level; it feeds pattern discovery,
// which wants the raw population of error lines.
func (x *Extractor) ExtractAll(ctx context.Context, src io.Reader, max int) ([]ErrorHit, error) {
	if max <= 0 {
		max = 10
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		hits             []ErrorHit
		lineNo           int
		warningsAsErrors bool
	)
	for scanner.Scan() {
		lineNo++
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := scanner.Text()

		if warningsAsErrorsRe.MatchString(line) {
			warningsAsErrors = true
			continue
		}

		text := line
		if msg := x.structuredMessage(line); msg != "" {
			text = msg
		}
		out := x.cat.Classify(text, warningsAsErrors)
		if out.Kind != catalog.OutcomeMatched {
			continue
		}
		hits = append(hits, ErrorHit{
			Line:       strings.TrimSpace(text),
			LineNumber: lineNo,
			Level:      out.Level,
			Tag:        out.Tag,
		})
		if len(hits) >= max {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return hits, nil
}

// structuredMessage returns the message field of a JSON or logfmt line, or
// "" for plain text. Classifying the message instead of the envelope keeps
// timestamps and field names out of the signature.
func (x *Extractor) structuredMessage(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") && !logfmtRe.MatchString(trimmed) {
		return ""
	}
	entries, err := x.lp.ParseString(trimmed)
	if err != nil || len(entries) == 0 {
		return ""
	}
	return strings.TrimSpace(entries[0].Message)
}
