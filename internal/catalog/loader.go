package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ruleFile is the on-disk YAML schema for a rule set.
type ruleFile struct {
	Version string  `yaml:"version"`
	Rules   []*Rule `yaml:"rules"`
}

// Load parses and compiles a YAML rule definition. Any malformed rule or
// invalid regex fails the whole load.
func Load(data []byte) (*Catalog, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("rule file contains no rules")
	}
	return Compile(rf.Version, rf.Rules)
}

// LoadFile loads a rule catalog from a single YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file: %w", err)
	}
	c, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadDir loads every .yaml/.yml file in dir (sorted by name) and merges
// them into one catalog. The merged version is the version of the first
// file that declares one.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading rule directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no rule files found in %s", dir)
	}
	sort.Strings(paths)

	var version string
	var rules []*Rule
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading rule file: %w", err)
		}
		var rf ruleFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("%s: parsing rule file: %w", p, err)
		}
		if version == "" {
			version = rf.Version
		}
		rules = append(rules, rf.Rules...)
	}

	c, err := Compile(version, rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	return c, nil
}
