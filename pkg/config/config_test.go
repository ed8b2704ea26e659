package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Load(t *testing.T) {
	tests := []struct {
		name         string
		configData   string
		expectError  bool
		validateFunc func(*testing.T, *Config)
	}{
		{
			name:        "load with empty file path",
			configData:  "",
			expectError: false,
			validateFunc: func(t *testing.T, c *Config) {
				assert.Equal(t, "archlens", c.App.Name)
				assert.Equal(t, "info", c.Logging.Level)
				assert.Equal(t, 10, c.Analysis.MaxDepth)
				assert.Contains(t, c.Analysis.IncludePatterns, "**/*.rs")
			},
		},
		{
			name: "load valid config",
			configData: `
app:
  name: "test-app"
  version: "2.0.0"
  debug: true
logging:
  level: "debug"
  format: "json"
analysis:
  max_depth: 3
  include_patterns: ["**/*.go"]
  parse_tests: true
`,
			expectError: false,
			validateFunc: func(t *testing.T, c *Config) {
				assert.Equal(t, "test-app", c.App.Name)
				assert.Equal(t, "2.0.0", c.App.Version)
				assert.True(t, c.App.Debug)
				assert.Equal(t, "debug", c.Logging.Level)
				assert.Equal(t, 3, c.Analysis.MaxDepth)
				assert.Equal(t, []string{"**/*.go"}, c.Analysis.IncludePatterns)
				assert.True(t, c.Analysis.ParseTests)
			},
		},
		{
			name: "invalid yaml",
			configData: `
app:
  name: "test
  invalid yaml
`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var configFile string

			if tt.configData != "" {
				tmpDir := t.TempDir()
				configFile = filepath.Join(tmpDir, "test-config.yaml")
				err := os.WriteFile(configFile, []byte(tt.configData), 0644)
				require.NoError(t, err)
			}

			config, err := Load(configFile)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
			} else {
				require.NoError(t, err)
				require.NotNil(t, config)
				if tt.validateFunc != nil {
					tt.validateFunc(t, config)
				}
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{name: "valid config", mutate: func(c *Config) {}, expectError: false},
		{name: "empty app name", mutate: func(c *Config) { c.App.Name = "" }, expectError: true},
		{name: "invalid max depth", mutate: func(c *Config) { c.Analysis.MaxDepth = 0 }, expectError: true},
		{name: "invalid logging level", mutate: func(c *Config) { c.Logging.Level = "invalid" }, expectError: true},
		{name: "bad glob pattern", mutate: func(c *Config) { c.Analysis.IncludePatterns = []string{"[unterminated"} }, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.setDefaults()
			tt.mutate(c)
			err := c.Validate()

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
