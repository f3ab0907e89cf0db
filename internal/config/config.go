package config

import (
	"fmt"

	"github.com/faildex/faildex/internal/similarity"
)

// Config holds the complete application configuration.
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Rules     RulesConfig     `yaml:"rules" json:"rules"`
	Scan      ScanConfig      `yaml:"scan" json:"scan"`
	Ranking   RankingConfig   `yaml:"ranking" json:"ranking"`
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`
	Feedback  FeedbackConfig  `yaml:"feedback" json:"feedback"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// RulesConfig configures classification rule loading.
type RulesConfig struct {
	Directories      []string `yaml:"directories" json:"directories"`               // extra rule catalogs, merged over the builtin set
	EnableBuiltin    bool     `yaml:"enable_builtin" json:"enable_builtin"`         // include the builtin catalog
	WarningsAsErrors bool     `yaml:"warnings_as_errors" json:"warnings_as_errors"` // default flag for logs without a compiler marker
}

// ScanConfig configures log scanning behavior.
type ScanConfig struct {
	MaxLines int   `yaml:"max_lines" json:"max_lines"` // 0 = unbounded
	EndsOnly int64 `yaml:"ends_only" json:"ends_only"` // bytes of head+tail to scan; 0 = whole file
	MaxHits  int   `yaml:"max_hits" json:"max_hits"`   // cap for extract-all scans
}

// RankingConfig configures candidate scoring.
type RankingConfig struct {
	Preset  string             `yaml:"preset" json:"preset"`   // named weight preset
	Weights similarity.Weights `yaml:"weights" json:"weights"` // explicit weights override the preset when non-zero
	Top     int                `yaml:"top" json:"top"`         // matches reported; 0 = all
}

// DiscoveryConfig configures unsupervised rule proposal.
type DiscoveryConfig struct {
	MinSupport    int `yaml:"min_support" json:"min_support"`
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"`
}

// FeedbackConfig configures relevance feedback storage and training.
type FeedbackConfig struct {
	StorePath string `yaml:"store_path" json:"store_path"` // sqlite feedback database
	ModelPath string `yaml:"model_path" json:"model_path"` // trained model artifact
}

// OutputConfig configures output formatting and display.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // text|json|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Rules: RulesConfig{
			EnableBuiltin: true,
		},
		Scan: ScanConfig{
			MaxHits: 500,
		},
		Ranking: RankingConfig{
			Preset: similarity.DefaultPreset,
			Top:    10,
		},
		Discovery: DiscoveryConfig{
			MinSupport:    3,
			MaxCandidates: 20,
		},
		Feedback: FeedbackConfig{
			StorePath: "~/.local/share/faildex/feedback.db",
			ModelPath: "~/.local/share/faildex/relevance.json",
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
		},
	}
}

// ScoringWeights resolves the effective similarity weights: explicit
// weights win over the preset.
func (c *Config) ScoringWeights() (similarity.Weights, error) {
	if c.Ranking.Weights != (similarity.Weights{}) {
		if err := c.Ranking.Weights.Validate(); err != nil {
			return similarity.Weights{}, err
		}
		return c.Ranking.Weights, nil
	}
	return similarity.PresetWeights(c.Ranking.Preset)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Output.DefaultFormat {
	case "text", "json", "markdown", "csv":
	default:
		return fmt.Errorf("invalid output format %q (want text, json, markdown or csv)", c.Output.DefaultFormat)
	}

	switch c.Output.ColorMode {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", c.Output.ColorMode)
	}

	if _, err := c.ScoringWeights(); err != nil {
		return fmt.Errorf("ranking: %w", err)
	}
	if c.Ranking.Top < 0 {
		return fmt.Errorf("ranking top must not be negative, got %d", c.Ranking.Top)
	}

	if c.Scan.MaxLines < 0 {
		return fmt.Errorf("scan max_lines must not be negative, got %d", c.Scan.MaxLines)
	}
	if c.Scan.EndsOnly < 0 {
		return fmt.Errorf("scan ends_only must not be negative, got %d", c.Scan.EndsOnly)
	}
	if c.Scan.MaxLines > 0 && c.Scan.EndsOnly > 0 {
		return fmt.Errorf("scan max_lines and ends_only are mutually exclusive")
	}

	if c.Discovery.MinSupport < 2 {
		return fmt.Errorf("discovery min_support must be at least 2, got %d", c.Discovery.MinSupport)
	}
	if c.Discovery.MaxCandidates < 1 {
		return fmt.Errorf("discovery max_candidates must be at least 1, got %d", c.Discovery.MaxCandidates)
	}

	if !c.Rules.EnableBuiltin && len(c.Rules.Directories) == 0 {
		return fmt.Errorf("no rule sources: builtin catalog disabled and no rule directories configured")
	}

	return nil
}
