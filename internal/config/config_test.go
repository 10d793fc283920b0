package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes TOML content to a temp file and returns its path
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// validConfig returns a config that passes validation
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Pipeline.Companies = []string{"Acme Bank", "Zen Credit"}
	cfg.Pipeline.StartDate = "2024-01-01"
	return cfg
}

// =============================================================================
// Loading Tests
// =============================================================================

func TestLoadConfig_NoFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "database/cfpb_complaints.db", cfg.Database.Path)
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotEmpty(t, cfg.API.BaseURL)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestLoadConfig_ParsesFile(t *testing.T) {
	path := writeConfigFile(t, `
[database]
path = "complaints.db"

[pipeline]
companies = ["Acme Bank", "Zen Credit"]
start_date = "2024-01-01"

[api]
page_size = 250

[logging]
level = "debug"
format = "json"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "complaints.db", cfg.Database.Path)
	assert.Equal(t, []string{"Acme Bank", "Zen Credit"}, cfg.Pipeline.Companies)
	assert.Equal(t, "2024-01-01", cfg.Pipeline.StartDate)
	assert.Equal(t, 250, cfg.API.PageSize)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unspecified fields keep their defaults
	assert.Equal(t, "migrations", cfg.Database.MigrationsDir)
	assert.NotEmpty(t, cfg.API.BaseURL)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	path := writeConfigFile(t, `[pipeline
companies = [`)

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestStartDate(t *testing.T) {
	cfg := validConfig()

	got, err := cfg.StartDate()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseCompanyList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single company",
			input: "Acme Bank",
			want:  []string{"Acme Bank"},
		},
		{
			name:  "multiple companies with whitespace",
			input: "Acme Bank, Zen Credit ,Third Corp",
			want:  []string{"Acme Bank", "Zen Credit", "Third Corp"},
		},
		{
			name:  "empty entries dropped",
			input: ",Acme Bank,,",
			want:  []string{"Acme Bank"},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCompanyList(tt.input))
		})
	}
}

// =============================================================================
// Validation Tests
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "missing database path",
			mutate:      func(c *Config) { c.Database.Path = "" },
			errContains: "database path",
		},
		{
			name:        "no companies",
			mutate:      func(c *Config) { c.Pipeline.Companies = nil },
			errContains: "at least one company",
		},
		{
			name:        "empty company name",
			mutate:      func(c *Config) { c.Pipeline.Companies = []string{"Acme Bank", ""} },
			errContains: "non-empty",
		},
		{
			name:        "duplicate company",
			mutate:      func(c *Config) { c.Pipeline.Companies = []string{"Acme Bank", "Acme Bank"} },
			errContains: "duplicate company",
		},
		{
			name:        "missing start date",
			mutate:      func(c *Config) { c.Pipeline.StartDate = "" },
			errContains: "start_date must be specified",
		},
		{
			name:        "malformed start date",
			mutate:      func(c *Config) { c.Pipeline.StartDate = "01/02/2024" },
			errContains: "invalid pipeline start_date",
		},
		{
			name: "future start date",
			mutate: func(c *Config) {
				c.Pipeline.StartDate = time.Now().UTC().AddDate(0, 0, 1).Format(time.DateOnly)
			},
			errContains: "must not be in the future",
		},
		{
			name: "start date today is allowed",
			mutate: func(c *Config) {
				c.Pipeline.StartDate = time.Now().UTC().Format(time.DateOnly)
			},
		},
		{
			name:        "missing api base url",
			mutate:      func(c *Config) { c.API.BaseURL = "" },
			errContains: "base_url",
		},
		{
			name:        "non-positive page size",
			mutate:      func(c *Config) { c.API.PageSize = 0 },
			errContains: "page_size",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			errContains: "invalid log level",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			errContains: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}
