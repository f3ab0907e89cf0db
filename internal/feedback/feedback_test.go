package feedback

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/faildex/faildex/internal/similarity"
)

// trainingCorpus builds a separable corpus: relevant pairs share failure
// vocabulary, irrelevant pairs do not.
func trainingCorpus(n int) []Record {
	var out []Record
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			out = append(out, Record{
				Test:         fmt.Sprintf("test_dma_%d", i),
				Signature:    "segfault in dma_engine during transfer at 0xdead0100",
				IssueID:      fmt.Sprintf("PROJ-%d", i),
				IssueSummary: "segfault crash in dma_engine transfer path",
				Relevant:     true,
			})
		} else {
			out = append(out, Record{
				Test:         fmt.Sprintf("test_dma_%d", i),
				Signature:    "segfault in dma_engine during transfer at 0xdead0100",
				IssueID:      fmt.Sprintf("PROJ-%d", i),
				IssueSummary: "update install guide screenshots",
				Relevant:     false,
			})
		}
	}
	return out
}

func TestTrainSkipsBelowMinimum(t *testing.T) {
	m, skip, err := Train(trainingCorpus(MinTrainRecords - 1))
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if skip != SkipTooFewRecords {
		t.Errorf("skip = %q, want SkipTooFewRecords", skip)
	}
	if m != nil {
		t.Error("Train() returned a model despite skipping")
	}
}

func TestTrainSkipsSingleClass(t *testing.T) {
	records := trainingCorpus(30)
	for i := range records {
		records[i].Relevant = true
	}
	m, skip, err := Train(records)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if skip != SkipSingleClass || m != nil {
		t.Errorf("Train() = %v, %q; want nil model, SkipSingleClass", m, skip)
	}
}

func TestTrainSeparatesClasses(t *testing.T) {
	m, skip, err := Train(trainingCorpus(40))
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if skip != SkipNone {
		t.Fatalf("skip = %q, want none", skip)
	}
	if m.Samples != 40 {
		t.Errorf("Samples = %d, want 40", m.Samples)
	}
	if m.Accuracy < 0.5 {
		t.Errorf("Accuracy = %v, suspiciously low for a separable corpus", m.Accuracy)
	}

	pRel := m.Predict("segfault in dma_engine during transfer at 0xdead0100",
		"segfault crash in dma_engine transfer path", "")
	pIrr := m.Predict("segfault in dma_engine during transfer at 0xdead0100",
		"update install guide screenshots", "")
	if pRel <= pIrr {
		t.Errorf("Predict(relevant) = %v should exceed Predict(irrelevant) = %v", pRel, pIrr)
	}
}

func TestModelSaveLoad(t *testing.T) {
	m, skip, err := Train(trainingCorpus(40))
	if err != nil || skip != SkipNone {
		t.Fatalf("Train() = %q, %v", skip, err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := m.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := LoadModel(path)
	if err != nil {
		t.Fatalf("LoadModel() error = %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("model round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := LoadModel(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("LoadModel(missing) = nil error, want failure")
	}
}

func TestExtractFeaturesShape(t *testing.T) {
	f := extractFeatures("segfault at 0xdead after error 42", "segfault in startup", "")
	if len(f) != FeatureDim {
		t.Fatalf("got %d features, want %d", len(f), FeatureDim)
	}
	for i, v := range f {
		if v < 0 || v > 1 {
			t.Errorf("feature %d = %v outside [0,1]", i, v)
		}
	}
	// Crash family appears on both sides; error code flag is set.
	if f[3] != 1 {
		t.Errorf("crash co-occurrence = %v, want 1", f[3])
	}
	if f[12] != 1 {
		t.Errorf("error-code flag = %v, want 1", f[12])
	}
}

func TestRerankUntrainedIsIdentity(t *testing.T) {
	matches := []similarity.MatchResult{
		{IssueID: "PROJ-1", Score: 0.9, Rank: 1},
		{IssueID: "PROJ-2", Score: 0.4, Rank: 2},
	}
	got := NewRanker(nil).Rerank("sig", matches, nil)
	if diff := cmp.Diff(matches, got); diff != "" {
		t.Errorf("untrained Rerank changed results (-want +got):\n%s", diff)
	}
}

func TestRerankBlendsModelProbability(t *testing.T) {
	// Hand-built model keyed entirely on TF-IDF similarity (feature 0).
	m := &Model{Version: "relevance-v1", Weights: [FeatureDim]float64{0: 8}, Bias: -2}
	r := NewRanker(m)

	sig := "dma transfer failure"
	issues := []similarity.CandidateIssue{
		{ID: "PROJ-1", Summary: "documentation cleanup pass"},
		{ID: "PROJ-2", Summary: "dma transfer failure"},
	}
	matches := []similarity.MatchResult{
		{IssueID: "PROJ-1", Score: 0.9, Rank: 1},
		{IssueID: "PROJ-2", Score: 0.5, Rank: 2},
	}

	got := r.Rerank(sig, matches, issues)
	if got[0].IssueID != "PROJ-2" {
		t.Errorf("top after rerank = %s, want PROJ-2 (model recognizes the matching issue)", got[0].IssueID)
	}
	for i, res := range got {
		if res.Rank != i+1 {
			t.Errorf("got[%d].Rank = %d, want %d", i, res.Rank, i+1)
		}
	}
	// Input slice is untouched.
	if matches[0].IssueID != "PROJ-1" || matches[0].Rank != 1 {
		t.Error("Rerank mutated its input")
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer store.Close()

	ctx := t.Context()
	rec := Record{
		Test:              "test_dma_transfer_basic",
		Signature:         "Segmentation fault in dma_engine",
		SignatureKeywords: []string{"segfault", "dma_engine"},
		IssueID:           "PROJ-7",
		IssueSummary:      "dma engine crash",
		IssueDescription:  "crashes under load",
		Relevant:          true,
	}
	id, err := store.Add(ctx, rec)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if id == 0 {
		t.Error("Add() returned id 0")
	}
	if _, err := store.Add(ctx, Record{Test: "t2", IssueID: "PROJ-8", Relevant: false}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count() = %d, %v; want 2", n, err)
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(records))
	}
	got := records[0]
	if got.Test != rec.Test || got.IssueID != rec.IssueID || !got.Relevant {
		t.Errorf("List()[0] = %+v, want fields of %+v", got, rec)
	}
	if diff := cmp.Diff(rec.SignatureKeywords, got.SignatureKeywords); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
}

func TestStoreListLimit(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "feedback.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	defer store.Close()

	for i := 0; i < 5; i++ {
		if _, err := store.Add(t.Context(), Record{Test: "t", IssueID: fmt.Sprintf("P-%d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	records, err := store.List(t.Context(), 3)
	if err != nil || len(records) != 3 {
		t.Fatalf("List(3) = %d records, %v; want 3", len(records), err)
	}
}
