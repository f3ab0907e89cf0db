package catalog

import (
	"strings"
	"testing"
)

func mustCompile(t *testing.T, version string, rules []*Rule) *Catalog {
	t.Helper()
	c, err := Compile(version, rules)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return c
}

func TestClassifyIgnoreBeforeError(t *testing.T) {
	c := mustCompile(t, "t", []*Rule{
		{ID: "skip-zero", Kind: KindIgnore, Pattern: `ERRORS\s*:\s*0`},
		{ID: "err", Kind: KindError, Pattern: `ERRORS`, Level: 8, Tag: "t:errors"},
	})

	// The line matches both rules; the ignore rule wins regardless of the
	// error rule's level.
	got := c.Classify("ERRORS : 0", false)
	if got.Kind != OutcomeIgnored {
		t.Errorf("Classify() = %+v, want ignored", got)
	}

	got = c.Classify("ERRORS : 3", false)
	if got.Kind != OutcomeMatched || got.Level != 8 {
		t.Errorf("Classify() = %+v, want matched level 8", got)
	}
}

func TestClassifyConditionalIgnoreException(t *testing.T) {
	c := mustCompile(t, "t", []*Rule{
		{ID: "chatter", Kind: KindConditionalIgnore, Pattern: `daemon`, Exception: `caught\s+signal\s+\d+`},
		{ID: "sig", Kind: KindError, Pattern: `caught signal`, Level: 6, Tag: "t:signal"},
	})

	if got := c.Classify("daemon: heartbeat ok", false); got.Kind != OutcomeIgnored {
		t.Errorf("plain chatter: Classify() = %+v, want ignored", got)
	}

	// The exception holds, so the line falls through to error rules.
	got := c.Classify("daemon: worker caught signal 11", false)
	if got.Kind != OutcomeMatched || got.Level != 6 {
		t.Errorf("exception line: Classify() = %+v, want matched level 6", got)
	}
}

func TestClassifyKeepsMaxLevel(t *testing.T) {
	c := mustCompile(t, "t", []*Rule{
		{ID: "generic", Kind: KindError, Pattern: `Error:`, Level: 5, Tag: "t:generic"},
		{ID: "segv", Kind: KindError, Pattern: `Segmentation fault`, Level: 10, Tag: "t:segv"},
	})

	// Both rules match; the higher level wins even though the generic rule
	// comes first in catalog order.
	got := c.Classify("Error: Segmentation fault (core dumped)", false)
	if got.Level != 10 || got.Tag != "t:segv" {
		t.Errorf("Classify() = %+v, want level 10 tag t:segv", got)
	}
}

func TestClassifyTieKeepsFirstRule(t *testing.T) {
	c := mustCompile(t, "t", []*Rule{
		{ID: "a", Kind: KindError, Pattern: `boom`, Level: 7, Tag: "t:a"},
		{ID: "b", Kind: KindError, Pattern: `boom`, Level: 7, Tag: "t:b"},
	})

	got := c.Classify("boom", false)
	if got.Tag != "t:a" {
		t.Errorf("Classify() tag = %q, want t:a (first rule at tied level)", got.Tag)
	}
}

func TestClassifyWarningsGated(t *testing.T) {
	c := mustCompile(t, "t", []*Rule{
		{ID: "warn", Kind: KindWarning, Pattern: `warning`, Level: 3, Tag: "t:warn", CaseFold: true},
	})

	line := "Warning: unused variable 'x'"
	if got := c.Classify(line, false); got.Kind != OutcomeNone {
		t.Errorf("warnings off: Classify() = %+v, want none", got)
	}
	got := c.Classify(line, true)
	if got.Kind != OutcomeMatched || got.Level != 3 {
		t.Errorf("warnings on: Classify() = %+v, want matched level 3", got)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	c := Builtin()
	got := c.Classify("all 42 tests passed", false)
	if got.Kind != OutcomeNone {
		t.Errorf("Classify() = %+v, want none", got)
	}
}

func TestCompileRejectsBadRegex(t *testing.T) {
	_, err := Compile("t", []*Rule{
		{ID: "bad", Kind: KindError, Pattern: `([unclosed`, Level: 5, Tag: "t:bad"},
	})
	if err == nil {
		t.Fatal("Compile() with invalid regex: want error, got nil")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q does not name the offending rule", err)
	}
}

func TestRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    *Rule
		wantErr bool
	}{
		{"valid error", &Rule{ID: "a", Kind: KindError, Pattern: "x", Level: 5, Tag: "t:a"}, false},
		{"valid ignore", &Rule{ID: "a", Kind: KindIgnore, Pattern: "x"}, false},
		{"valid conditional", &Rule{ID: "a", Kind: KindConditionalIgnore, Pattern: "x", Exception: "y"}, false},
		{"empty pattern", &Rule{ID: "a", Kind: KindError, Level: 5, Tag: "t:a"}, true},
		{"ignore with exception", &Rule{ID: "a", Kind: KindIgnore, Pattern: "x", Exception: "y"}, true},
		{"conditional without exception", &Rule{ID: "a", Kind: KindConditionalIgnore, Pattern: "x"}, true},
		{"level out of range", &Rule{ID: "a", Kind: KindError, Pattern: "x", Level: 11, Tag: "t:a"}, true},
		{"level zero", &Rule{ID: "a", Kind: KindError, Pattern: "x", Level: 0, Tag: "t:a"}, true},
		{"missing tag", &Rule{ID: "a", Kind: KindError, Pattern: "x", Level: 5}, true},
		{"unknown kind", &Rule{ID: "a", Kind: "nope", Pattern: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuiltinCatalog(t *testing.T) {
	c := Builtin()
	if c.Len() == 0 {
		t.Fatal("builtin catalog is empty")
	}
	if c.Version() == "" {
		t.Error("builtin catalog has no version")
	}

	tests := []struct {
		line      string
		warnings  bool
		wantKind  OutcomeKind
		wantLevel int
	}{
		// Zero-count summary lines are noise, not failures.
		{"UVM_ERROR :    0", false, OutcomeIgnored, 0},
		{"UVM_FATAL reports  :    0", false, OutcomeIgnored, 0},
		{"UVM_ERROR @ 125ns: reporter [TIMEOUT] watchdog expired", false, OutcomeMatched, 9},
		{"run.sh: line 3: Segmentation fault (core dumped)", false, OutcomeMatched, 10},
		{"assert.c:88: Assertion `ptr != NULL' failed.", false, OutcomeMatched, 8},
		{"ld.so: symbol lookup error: undefined symbol", false, OutcomeMatched, 7},
		{"make[2]: *** [obj/top.o] Error 1 Stop.", false, OutcomeMatched, 6},
		{"Error: null object access", false, OutcomeMatched, 7},
		{"simctrl: polling run state", false, OutcomeIgnored, 0},
		{"simctrl: run failed: caught signal 11", false, OutcomeMatched, 5},
		{"warning: deprecated API", false, OutcomeNone, 0},
		{"warning: deprecated API", true, OutcomeMatched, 3},
	}
	for _, tt := range tests {
		got := c.Classify(tt.line, tt.warnings)
		if got.Kind != tt.wantKind {
			t.Errorf("Classify(%q) kind = %v, want %v", tt.line, got.Kind, tt.wantKind)
			continue
		}
		if tt.wantKind == OutcomeMatched && got.Level != tt.wantLevel {
			t.Errorf("Classify(%q) level = %d, want %d", tt.line, got.Level, tt.wantLevel)
		}
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]RuleKind{
		"ignore":        KindIgnore,
		"IGNORE":        KindIgnore,
		"ignore_unless": KindConditionalIgnore,
		"error":         KindError,
		"warn":          KindWarning,
	} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("ParseKind(bogus): want error")
	}
}
