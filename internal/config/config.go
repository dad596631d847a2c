// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Valid report formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents the application configuration. Command-line flags
// override anything set here.
type Config struct {
	// Roots are the default directory trees to compare. When set there
	// must be two or three, all absolute.
	Roots []string `yaml:"roots,omitempty"`

	// ReportDir is where report files are written. Empty means the
	// current working directory.
	ReportDir string `yaml:"report_dir"`

	// ReportFormats selects which report files a scan writes.
	ReportFormats []string `yaml:"report_formats"`

	// PollIntervalMs is how often the display polls scan progress.
	PollIntervalMs int `yaml:"poll_interval_ms"`
}

// GetDefault returns the default configuration.
func GetDefault() *Config {
	return &Config{
		ReportFormats:  []string{FormatCSV, FormatJSON},
		PollIntervalMs: 200,
	}
}

// Load loads configuration from a file. A missing file is not an error;
// it yields the defaults.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := GetDefault()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Save writes the configuration to a file, creating parent directories
// as needed.
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if len(c.Roots) != 0 && (len(c.Roots) < 2 || len(c.Roots) > 3) {
		return fmt.Errorf("roots must list 2 or 3 directories, got %d", len(c.Roots))
	}
	for _, root := range c.Roots {
		if !filepath.IsAbs(root) {
			return fmt.Errorf("root must be absolute: %s", root)
		}
	}

	if c.ReportDir != "" && !filepath.IsAbs(c.ReportDir) {
		return fmt.Errorf("report_dir must be absolute: %s", c.ReportDir)
	}

	for _, format := range c.ReportFormats {
		switch format {
		case FormatCSV, FormatJSON, FormatYAML:
		default:
			return fmt.Errorf("unknown report format: %s", format)
		}
	}

	if c.PollIntervalMs < 50 {
		return fmt.Errorf("poll_interval_ms must be at least 50, got %d", c.PollIntervalMs)
	}

	return nil
}

// GetConfigPath returns the default config path.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "dupfinder", "config.yaml"), nil
}

// EnsureConfigExists creates a default config file if one is not present
// and returns its path.
func EnsureConfigExists() (string, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(GetDefault(), configPath); err != nil {
			return "", err
		}
	}

	return configPath, nil
}
