package linter

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config represents the linting configuration
type Config struct {
	Version string        `yaml:"version"`
	Lint    LintRules     `yaml:"lint"`
	Quality QualityConfig `yaml:"quality"`
}

// LintRules contains rule configuration
type LintRules struct {
	Rules      map[string]bool   `yaml:"rules"`
	Ignore     []string          `yaml:"ignore"`
	Categories map[string]string `yaml:"categories"` // category -> severity or "off"
}

// QualityConfig configures quality metrics
type QualityConfig struct {
	Enabled               bool                        `yaml:"enabled"`
	DocumentationCoverage DocumentationCoverageConfig `yaml:"documentation_coverage"`
}

// DocumentationCoverageConfig for documentation metrics
type DocumentationCoverageConfig struct {
	MinCoverage float64 `yaml:"min_coverage"`
}

// ConfigFileNames are searched in order by LoadConfigFromDir.
var ConfigFileNames = []string{"weaver-lint.yaml", "weaver-lint.yml", ".weaver-lint.yaml", ".weaver-lint.yml"}

// DefaultConfig returns default linting configuration
func DefaultConfig() *Config {
	return &Config{
		Version: "v1",
		Lint: LintRules{
			Rules:      make(map[string]bool),
			Ignore:     []string{"vendor/**", "third_party/**"},
			Categories: make(map[string]string),
		},
		Quality: QualityConfig{
			Enabled: true,
			DocumentationCoverage: DocumentationCoverageConfig{
				MinCoverage: 0,
			},
		},
	}
}

// Clone returns a deep copy of c
func (c *Config) Clone() *Config {
	out := *c
	out.Lint.Rules = maps.Clone(c.Lint.Rules)
	out.Lint.Categories = maps.Clone(c.Lint.Categories)
	out.Lint.Ignore = slices.Clone(c.Lint.Ignore)
	if out.Lint.Rules == nil {
		out.Lint.Rules = make(map[string]bool)
	}
	if out.Lint.Categories == nil {
		out.Lint.Categories = make(map[string]string)
	}
	return &out
}

// Validate checks the configuration
func (c *Config) Validate() error {
	for category, sev := range c.Lint.Categories {
		switch sev {
		case "off", string(SeverityError), string(SeverityWarning), string(SeverityInfo):
		default:
			return fmt.Errorf("category %s: invalid severity %q", category, sev)
		}
	}
	for _, pattern := range c.Lint.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("ignore pattern %q: %w", pattern, err)
		}
	}
	if cov := c.Quality.DocumentationCoverage.MinCoverage; cov < 0 || cov > 100 {
		return fmt.Errorf("min_coverage must be between 0 and 100, got %v", cov)
	}
	return nil
}

// LoadConfig loads configuration from a file. Missing sections keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lint config %s: %w", filepath.Base(path), err)
	}

	return config, nil
}

// LoadConfigFromDir searches for config file in directory
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// Return default if no config found
	return DefaultConfig(), nil
}
