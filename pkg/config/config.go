// Package config provides configuration management for the analysis
// pipeline. It handles loading and validation of YAML configuration
// files, with every field optional and backed by a sane default.
package config

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/archlens-go/archlens/pkg/types"
)

// Config is the application configuration structure: app identity,
// logging, and the analysis settings from spec.md §6.2.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Debug   bool   `yaml:"debug"`
	} `yaml:"app"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Analysis AnalysisConfig `yaml:"analysis"`
}

// AnalysisConfig gates and scopes the analyze pipeline. All fields are
// optional; zero values are replaced by setDefaults.
type AnalysisConfig struct {
	IncludePatterns     []string            `yaml:"include_patterns"`
	ExcludePatterns     []string            `yaml:"exclude_patterns"`
	MaxDepth            int                 `yaml:"max_depth"`
	AnalyzeDependencies bool                `yaml:"analyze_dependencies"`
	ExtractComments     bool                `yaml:"extract_comments"`
	ParseTests          bool                `yaml:"parse_tests"`
	GenerateSummaries   bool                `yaml:"generate_summaries"`
	Languages           []types.LanguageTag `yaml:"languages"`
}

// Load loads configuration from the specified file, applying defaults
// first so that a YAML document only needs to mention the fields it
// wants to override.
func Load(configFile string) (*Config, error) {
	config := &Config{}
	config.setDefaults()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// setDefaults sets default configuration values, matching spec.md §6.2.
func (c *Config) setDefaults() {
	c.App.Name = "archlens"
	c.App.Version = "0.1.0"

	c.Logging.Level = "info"
	c.Logging.Format = "json"

	c.Analysis = AnalysisConfig{
		IncludePatterns: []string{"**/*.rs", "**/*.ts", "**/*.js", "**/*.py"},
		ExcludePatterns: []string{
			"**/target/**", "**/node_modules/**", "**/.git/**", "**/dist/**", "**/build/**",
		},
		MaxDepth:            10,
		AnalyzeDependencies: true,
		ExtractComments:     true,
		ParseTests:          false,
		GenerateSummaries:   true,
		Languages: []types.LanguageTag{
			types.LanguageRust, types.LanguageTypeScript, types.LanguageJavaScript, types.LanguagePython,
		},
	}
}

// Validate validates the configuration settings, including that every
// glob pattern compiles.
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name cannot be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	if c.Analysis.MaxDepth <= 0 {
		return fmt.Errorf("analysis.max_depth must be positive")
	}

	patterns := append(append([]string{}, c.Analysis.IncludePatterns...), c.Analysis.ExcludePatterns...)
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern: %s", pattern)
		}
	}

	return nil
}
