package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/faildex/faildex/internal/catalog"
	"github.com/faildex/faildex/internal/config"
	"github.com/faildex/faildex/internal/engine"
	"github.com/faildex/faildex/internal/feedback"
	"github.com/faildex/faildex/internal/formatter"
	"github.com/faildex/faildex/internal/logger"
	"github.com/faildex/faildex/internal/similarity"
)

// loadConfig resolves the effective configuration, folding in the
// global flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if outputFmt != "" {
		cfg.Output.DefaultFormat = outputFmt
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadCatalog assembles the effective rule catalog: the builtin set,
// with configured rule directories merged on top.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	var (
		rules   []*catalog.Rule
		version string
	)
	if cfg.Rules.EnableBuiltin {
		builtin := catalog.Builtin()
		rules = append(rules, builtin.Rules()...)
		version = builtin.Version()
	}
	for _, dir := range cfg.Rules.Directories {
		loaded, err := catalog.LoadDir(config.ExpandPath(dir))
		if err != nil {
			return nil, fmt.Errorf("load rules from %s: %w", dir, err)
		}
		rules = append(rules, loaded.Rules()...)
		if loaded.Version() != "" {
			version = loaded.Version()
		}
	}
	return catalog.Compile(version, rules)
}

// buildEngine assembles the engine from the configuration. A trained
// relevance model is picked up when present; a missing artifact is not
// an error.
func buildEngine(cfg *config.Config, log *logger.Logger) (*engine.Engine, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	weights, err := cfg.ScoringWeights()
	if err != nil {
		return nil, err
	}

	var model *feedback.Model
	modelPath := config.ExpandPath(cfg.Feedback.ModelPath)
	if _, statErr := os.Stat(modelPath); statErr == nil {
		model, err = feedback.LoadModel(modelPath)
		if err != nil {
			log.Warn("ignoring unreadable relevance model", logger.F("path", modelPath), logger.Err(err))
			model = nil
		} else {
			log.Debug("loaded relevance model", logger.F("path", modelPath), logger.F("samples", model.Samples))
		}
	}

	return engine.New(engine.Config{
		Catalog: cat,
		Weights: weights,
		Model:   model,
	})
}

// newFormatter picks the formatter for the effective output settings.
func newFormatter(cfg *config.Config) (formatter.Formatter, error) {
	color := false
	switch cfg.Output.ColorMode {
	case "always":
		color = true
	case "auto":
		color = !noColor && os.Getenv("NO_COLOR") == ""
	}
	if noColor {
		color = false
	}
	return formatter.New(cfg.Output.DefaultFormat, color)
}

// issueFile mirrors the two accepted shapes of a candidate issue file:
// a bare JSON array, or an object with an "issues" key.
type issueFile struct {
	Issues []similarity.CandidateIssue `json:"issues"`
}

// readIssues loads candidate issues from a JSON file.
func readIssues(path string) ([]similarity.CandidateIssue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read issues file: %w", err)
	}

	var issues []similarity.CandidateIssue
	if err := json.Unmarshal(data, &issues); err == nil {
		return issues, nil
	}
	var wrapped issueFile
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse issues file %s: %w", path, err)
	}
	return wrapped.Issues, nil
}

// newLogger creates a component logger gated on the effective verbosity.
func newLogger(component string) *logger.Logger {
	return logger.New(component, isVerbose)
}

// writeOutput prints formatted output to stdout.
func writeOutput(data []byte) error {
	_, err := os.Stdout.Write(data)
	return err
}

// contextWithSignals returns a context cancelled on SIGINT or SIGTERM.
func contextWithSignals() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
