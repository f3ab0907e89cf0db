package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/faildex/faildex/internal/similarity"
)

// ConfigPaths defines the config file search paths in priority order.
var ConfigPaths = []string{
	"./.faildex.yaml",               // project-specific config (highest priority)
	"~/.config/faildex/config.yaml", // user config
	"/etc/faildex/config.yaml",      // system config (lowest priority)
}

// Loader handles configuration loading with priority merging.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{configPaths: ConfigPaths}
}

// LoadConfig loads configuration with priority order: environment
// variables over config files over built-in defaults. When customPath is
// set, it is the only file consulted; otherwise the standard search
// paths are merged lowest priority first.
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	cfg := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(cfg, customPath); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", customPath, err)
		}
	} else {
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			path := expandPath(l.configPaths[i])
			if !fileExists(path) {
				continue
			}
			if err := l.loadFromFile(cfg, path); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to load config from %s: %v\n", path, err)
			}
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile merges one YAML file into cfg.
func (l *Loader) loadFromFile(cfg *Config, path string) error {
	// #nosec G304 - path is validated or comes from the fixed search list
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	mergeConfigs(cfg, &fileCfg)
	return nil
}

// applyEnvOverrides applies FAILDEX_* environment variables to cfg.
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	envMappings := map[string]func(string) error{
		"FAILDEX_RULES_ENABLE_BUILTIN":     func(v string) error { return parseBool(v, &cfg.Rules.EnableBuiltin) },
		"FAILDEX_RULES_WARNINGS_AS_ERRORS": func(v string) error { return parseBool(v, &cfg.Rules.WarningsAsErrors) },

		"FAILDEX_SCAN_MAX_LINES": func(v string) error { return parseInt(v, &cfg.Scan.MaxLines) },
		"FAILDEX_SCAN_ENDS_ONLY": func(v string) error { return parseInt64(v, &cfg.Scan.EndsOnly) },
		"FAILDEX_SCAN_MAX_HITS":  func(v string) error { return parseInt(v, &cfg.Scan.MaxHits) },

		"FAILDEX_RANKING_PRESET": func(v string) error { cfg.Ranking.Preset = v; return nil },
		"FAILDEX_RANKING_TOP":    func(v string) error { return parseInt(v, &cfg.Ranking.Top) },

		"FAILDEX_DISCOVERY_MIN_SUPPORT":    func(v string) error { return parseInt(v, &cfg.Discovery.MinSupport) },
		"FAILDEX_DISCOVERY_MAX_CANDIDATES": func(v string) error { return parseInt(v, &cfg.Discovery.MaxCandidates) },

		"FAILDEX_FEEDBACK_STORE_PATH": func(v string) error { cfg.Feedback.StorePath = v; return nil },
		"FAILDEX_FEEDBACK_MODEL_PATH": func(v string) error { cfg.Feedback.ModelPath = v; return nil },

		"FAILDEX_OUTPUT_DEFAULT_FORMAT": func(v string) error { cfg.Output.DefaultFormat = v; return nil },
		"FAILDEX_OUTPUT_COLOR_MODE":     func(v string) error { cfg.Output.ColorMode = v; return nil },
		"FAILDEX_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &cfg.Output.Verbose) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Rule directories come as a comma-separated list.
	if dirs := os.Getenv("FAILDEX_RULES_DIRECTORIES"); dirs != "" {
		parts := strings.Split(dirs, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.Rules.Directories = parts
	}

	return nil
}

// GetConfigPaths returns the expanded configuration search paths.
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths.
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expanded := expandPath(path)
		if fileExists(expanded) {
			return expanded, true
		}
	}
	return "", false
}

// validateConfigPath rejects traversal attempts and non-YAML files.
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string { return expandPath(path) }

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// mergeConfigs merges non-zero values from src into dst.
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}

	if len(src.Rules.Directories) > 0 {
		dst.Rules.Directories = src.Rules.Directories
	}
	// YAML cannot distinguish an absent boolean from an explicit false,
	// so files can only raise these flags; lowering them is done through
	// environment overrides.
	dst.Rules.WarningsAsErrors = dst.Rules.WarningsAsErrors || src.Rules.WarningsAsErrors
	dst.Rules.EnableBuiltin = dst.Rules.EnableBuiltin || src.Rules.EnableBuiltin

	if src.Scan.MaxLines != 0 {
		dst.Scan.MaxLines = src.Scan.MaxLines
	}
	if src.Scan.EndsOnly != 0 {
		dst.Scan.EndsOnly = src.Scan.EndsOnly
	}
	if src.Scan.MaxHits != 0 {
		dst.Scan.MaxHits = src.Scan.MaxHits
	}

	if src.Ranking.Preset != "" {
		dst.Ranking.Preset = src.Ranking.Preset
	}
	if src.Ranking.Weights != (similarity.Weights{}) {
		dst.Ranking.Weights = src.Ranking.Weights
	}
	if src.Ranking.Top != 0 {
		dst.Ranking.Top = src.Ranking.Top
	}

	if src.Discovery.MinSupport != 0 {
		dst.Discovery.MinSupport = src.Discovery.MinSupport
	}
	if src.Discovery.MaxCandidates != 0 {
		dst.Discovery.MaxCandidates = src.Discovery.MaxCandidates
	}

	if src.Feedback.StorePath != "" {
		dst.Feedback.StorePath = src.Feedback.StorePath
	}
	if src.Feedback.ModelPath != "" {
		dst.Feedback.ModelPath = src.Feedback.ModelPath
	}

	if src.Output.DefaultFormat != "" {
		dst.Output.DefaultFormat = src.Output.DefaultFormat
	}
	if src.Output.ColorMode != "" {
		dst.Output.ColorMode = src.Output.ColorMode
	}
	dst.Output.Verbose = dst.Output.Verbose || src.Output.Verbose
}

// Type conversion helpers.

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
