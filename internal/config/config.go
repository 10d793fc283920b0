package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/dwhitena/complaintsync/internal/cfpb"
	"github.com/dwhitena/complaintsync/internal/db"
	"github.com/dwhitena/complaintsync/internal/pipeline"
)

// Config represents the application configuration
type Config struct {
	Database db.Config       `toml:"database"`
	Pipeline pipeline.Config `toml:"pipeline"`
	API      cfpb.Config     `toml:"api"`
	Logging  LoggingConfig   `toml:"logging"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: db.Config{
			Path:            "database/cfpb_complaints.db",
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			MigrationsDir:   "migrations",
			SkipMigrations:  false,
		},
		Pipeline: pipeline.Config{
			Companies: []string{},
			StartDate: "",
		},
		API:     cfpb.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a TOML file
func LoadFromFile(path string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// Parse TOML file
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadConfig loads configuration, falling back to defaults when no config
// file is specified
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	return LoadFromFile(configPath)
}

// ParseCompanyList splits a comma-separated company list into names,
// trimming whitespace and dropping empty entries. Used by the CLI's
// -companies override.
func ParseCompanyList(s string) []string {
	var companies []string
	for _, part := range strings.Split(s, ",") {
		if name := strings.TrimSpace(part); name != "" {
			companies = append(companies, name)
		}
	}
	return companies
}

// StartDate parses the configured pipeline start date
func (c *Config) StartDate() (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, c.Pipeline.StartDate, time.UTC)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Database validation
	if c.Database.Path == "" {
		return fmt.Errorf("database path must be specified")
	}

	// Pipeline validation
	if len(c.Pipeline.Companies) == 0 {
		return fmt.Errorf("at least one company must be configured")
	}
	seen := make(map[string]bool)
	for _, company := range c.Pipeline.Companies {
		if company == "" {
			return fmt.Errorf("company names must be non-empty")
		}
		if seen[company] {
			return fmt.Errorf("duplicate company in configuration: %s", company)
		}
		seen[company] = true
	}
	if c.Pipeline.StartDate == "" {
		return fmt.Errorf("pipeline start_date must be specified")
	}
	startDate, err := c.StartDate()
	if err != nil {
		return fmt.Errorf("invalid pipeline start_date: %s (must be YYYY-MM-DD)", c.Pipeline.StartDate)
	}
	// A future start date would compute empty windows forever
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if startDate.After(today) {
		return fmt.Errorf("pipeline start_date must not be in the future: %s", c.Pipeline.StartDate)
	}

	// API validation
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url must be specified")
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("api page_size must be positive")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api timeout must not be negative")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}
