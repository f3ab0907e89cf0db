package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRules(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeRules(t, dir, "rules.yaml", `
version: "test-1"
rules:
  - id: noise
    kind: ignore
    pattern: 'expected failure'
  - id: crash
    kind: error
    pattern: 'fatal'
    level: 9
    tag: test:crash
`)

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if c.Version() != "test-1" {
		t.Errorf("Version() = %q, want test-1", c.Version())
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if got := c.Classify("fatal: device reset", false); got.Level != 9 {
		t.Errorf("Classify() = %+v, want level 9", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "rules:\n\t- broken"},
		{"empty rule list", "version: x\nrules: []\n"},
		{"bad regex", "rules:\n  - id: a\n    kind: error\n    pattern: '([bad'\n    level: 5\n    tag: t:a\n"},
		{"unknown kind", "rules:\n  - id: a\n    kind: maybe\n    pattern: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRules(t, dir, "bad-"+tt.name+".yaml", tt.content)
			if _, err := LoadFile(path); err == nil {
				t.Error("LoadFile() = nil error, want failure")
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadFile(missing) = nil error, want failure")
	}
}

func TestLoadDirMergesInNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeRules(t, dir, "10-base.yaml", `
version: "merged-1"
rules:
  - id: a
    kind: error
    pattern: 'boom'
    level: 5
    tag: test:a
`)
	writeRules(t, dir, "20-extra.yml", `
rules:
  - id: b
    kind: error
    pattern: 'boom'
    level: 5
    tag: test:b
`)
	writeRules(t, dir, "notes.txt", "not a rule file")

	c, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if c.Version() != "merged-1" {
		t.Errorf("Version() = %q, want merged-1", c.Version())
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	// Both rules tie at level 5; the rule from the earlier file wins.
	if got := c.Classify("boom", false); got.Tag != "test:a" {
		t.Errorf("Classify() tag = %q, want test:a", got.Tag)
	}
}

func TestLoadDirEmpty(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Error("LoadDir(empty) = nil error, want failure")
	}
}

func TestProviderSwap(t *testing.T) {
	v1 := mustCompile(t, "v1", []*Rule{{ID: "a", Kind: KindError, Pattern: "x", Level: 5, Tag: "t:a"}})
	v2 := mustCompile(t, "v2", []*Rule{{ID: "a", Kind: KindError, Pattern: "x", Level: 5, Tag: "t:a"}})

	p := NewProvider(v1)
	if p.Current().Version() != "v1" {
		t.Fatalf("Current() = %q, want v1", p.Current().Version())
	}
	old := p.Swap(v2)
	if old.Version() != "v1" || p.Current().Version() != "v2" {
		t.Errorf("Swap: old = %q current = %q, want v1/v2", old.Version(), p.Current().Version())
	}
}
