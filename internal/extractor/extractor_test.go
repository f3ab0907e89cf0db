package extractor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/faildex/faildex/internal/catalog"
)

func newTestExtractor() *Extractor {
	return New(catalog.Builtin())
}

func TestAnalyzeKeepsHighestLevel(t *testing.T) {
	log := strings.Join([]string{
		"starting run",
		"Error: transfer size mismatch",
		"cleaning up",
		"run.sh: line 3: Segmentation fault (core dumped)",
		"Error: post-run check failed",
	}, "\n")

	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if sig.Level != 10 {
		t.Errorf("Level = %d, want 10", sig.Level)
	}
	if sig.LineNumber != 4 {
		t.Errorf("LineNumber = %d, want 4", sig.LineNumber)
	}
	if !strings.Contains(sig.Signature, "Segmentation fault") {
		t.Errorf("Signature = %q, want the segfault line", sig.Signature)
	}
	if sig.LinesScanned != 5 {
		t.Errorf("LinesScanned = %d, want 5", sig.LinesScanned)
	}
}

func TestAnalyzeTieKeepsEarliestLine(t *testing.T) {
	log := "Error: first mismatch\nnoise\nError: second mismatch\n"

	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if sig.LineNumber != 1 {
		t.Errorf("LineNumber = %d, want 1 (earliest at tied level)", sig.LineNumber)
	}
}

func TestAnalyzeIgnoreOverridesError(t *testing.T) {
	// A log whose only "error" lines are zero-count summaries must report
	// no signature at all rather than a fabricated one.
	log := strings.Join([]string{
		"UVM_ERROR :    0",
		"UVM_FATAL :    0",
		"test passed",
	}, "\n")

	_, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if !errors.Is(err, ErrNoSignature) {
		t.Fatalf("Analyze() error = %v, want ErrNoSignature", err)
	}
}

func TestAnalyzeConflictingBudgets(t *testing.T) {
	_, err := newTestExtractor().Analyze(context.Background(), strings.NewReader("x\n"), Options{MaxLines: 10, EndsOnly: 10})
	if !errors.Is(err, ErrConflictingBudgets) {
		t.Fatalf("Analyze() error = %v, want ErrConflictingBudgets", err)
	}
}

func TestAnalyzeMaxLinesBudget(t *testing.T) {
	log := "noise\nnoise\nnoise\nError: too late\n"

	_, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{MaxLines: 2})
	if !errors.Is(err, ErrNoSignature) {
		t.Fatalf("Analyze() error = %v, want ErrNoSignature", err)
	}
	if !strings.Contains(err.Error(), "first 2 lines") {
		t.Errorf("error %q should name the exhausted budget", err)
	}
}

func TestAnalyzeEndsOnlyWindow(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("run started ok\n")
	for i := 0; i < 200; i++ {
		sb.WriteString("middle filler line with no problems at all\n")
	}
	sb.WriteString("Segmentation fault (core dumped)\n")

	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(sb.String()), Options{EndsOnly: 128})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if sig.Level != 10 {
		t.Errorf("Level = %d, want 10 (error sits in the tail window)", sig.Level)
	}
	// The middle was skipped, so far fewer lines were touched than exist.
	if sig.LinesScanned >= 200 {
		t.Errorf("LinesScanned = %d, want far fewer than the full log", sig.LinesScanned)
	}
}

func TestAnalyzeEndsOnlyRequiresSeeker(t *testing.T) {
	// Embedding the interface hides strings.Reader's Seek method.
	src := struct{ io.Reader }{strings.NewReader("x\n")}
	_, err := newTestExtractor().Analyze(context.Background(), src, Options{EndsOnly: 10})
	if err == nil {
		t.Fatal("Analyze() with non-seekable ends-only input: want error")
	}
}

func TestAnalyzeToolCapture(t *testing.T) {
	log := strings.Join([]string{
		"dv: ... running tool simv",
		"Error: scoreboard mismatch",
	}, "\n")

	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if sig.Tool != "simv" {
		t.Errorf("Tool = %q, want simv", sig.Tool)
	}
}

func TestAnalyzeSuiteTestAutoDetect(t *testing.T) {
	log := strings.Join([]string{
		"# action: gc(build)::pcie/link_retrain.vcs",
		"Error: link training failed",
	}, "\n")

	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if sig.Suite != "pcie" || sig.Test != "link_retrain" {
		t.Errorf("Suite/Test = %q/%q, want pcie/link_retrain", sig.Suite, sig.Test)
	}
	if sig.Tool != "vcs" {
		t.Errorf("Tool = %q, want vcs", sig.Tool)
	}
}

func TestAnalyzeWarningsAsErrors(t *testing.T) {
	warnLine := "top.cpp:42: warning: unused variable 'x'"

	// Without the marker the warning is invisible.
	_, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(warnLine+"\n"), Options{})
	if !errors.Is(err, ErrNoSignature) {
		t.Fatalf("warning without marker: error = %v, want ErrNoSignature", err)
	}

	log := "cc1plus: warnings being treated as errors\n" + warnLine + "\n"
	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if err != nil {
		t.Fatalf("warning with marker: Analyze() error = %v", err)
	}
	if sig.Level != 3 {
		t.Errorf("Level = %d, want 3", sig.Level)
	}
}

func TestAnalyzeContextWindow(t *testing.T) {
	log := "line one\nline two\nError: boom\n"

	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	want := []string{"line one", "line two", "Error: boom"}
	if diff := cmp.Diff(want, sig.Context); diff != "" {
		t.Errorf("Context mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeKeywordsFallBackToTestName(t *testing.T) {
	// The signature line yields no usable keywords, so they come from the
	// test name instead.
	log := "*E 1\n"
	sig, err := newTestExtractor().Analyze(context.Background(), strings.NewReader(log), Options{Test: "test_dma_transfer_basic"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	want := []string{"dma", "transfer", "basic"}
	if diff := cmp.Diff(want, sig.Keywords); diff != "" {
		t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestExtractor().Analyze(ctx, strings.NewReader("x\n"), Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyzeFileMissingDegrades(t *testing.T) {
	sig, err := newTestExtractor().AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.log"), Options{
		Suite: "pcie",
		Test:  "test_dma_transfer_basic",
	})
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if !sig.Degraded {
		t.Error("Degraded = false, want true")
	}
	if sig.Level != catalog.MinLevel {
		t.Errorf("Level = %d, want %d", sig.Level, catalog.MinLevel)
	}
	want := []string{"dma", "transfer", "basic"}
	if diff := cmp.Diff(want, sig.Keywords); diff != "" {
		t.Errorf("Keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte("ok\nError: bad state\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sig, err := newTestExtractor().AnalyzeFile(context.Background(), path, Options{})
	if err != nil {
		t.Fatalf("AnalyzeFile() error = %v", err)
	}
	if sig.Level != 5 {
		t.Errorf("Level = %d, want 5", sig.Level)
	}
}

func TestExtractAll(t *testing.T) {
	log := strings.Join([]string{
		"Error: first",
		"UVM_ERROR :    0",
		"noise",
		"Error: second",
		"Segmentation fault",
		"Error: third",
	}, "\n")

	hits, err := newTestExtractor().ExtractAll(context.Background(), strings.NewReader(log), 10)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if len(hits) != 4 {
		t.Fatalf("got %d hits, want 4: %+v", len(hits), hits)
	}
	if hits[0].Line != "Error: first" || hits[0].LineNumber != 1 {
		t.Errorf("hits[0] = %+v, want Error: first at line 1", hits[0])
	}
	if hits[2].Level != 10 {
		t.Errorf("hits[2].Level = %d, want 10", hits[2].Level)
	}
}

func TestExtractAllCap(t *testing.T) {
	log := strings.Repeat("Error: again\n", 20)
	hits, err := newTestExtractor().ExtractAll(context.Background(), strings.NewReader(log), 5)
	if err != nil {
		t.Fatalf("ExtractAll() error = %v", err)
	}
	if len(hits) != 5 {
		t.Errorf("got %d hits, want cap of 5", len(hits))
	}
}
