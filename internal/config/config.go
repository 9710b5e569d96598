// Package config handles reading and writing ~/.xpost/config.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	API       APIConfig       `yaml:"api"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Tweets    TweetsConfig    `yaml:"tweets"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig points the client at a backend.
type APIConfig struct {
	BaseURL        string `yaml:"base_url" env:"XPOST_API_URL, overwrite"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"XPOST_API_TIMEOUT, overwrite"` // 0 = transport default
}

// DashboardConfig controls the dashboard request window.
type DashboardConfig struct {
	SummaryDays int `yaml:"summary_days"`
	RecentLimit int `yaml:"recent_limit"`
}

// TweetsConfig controls the tweets view.
type TweetsConfig struct {
	ListLimit int `yaml:"list_limit"`
}

// LogConfig controls the diagnostics log.
type LogConfig struct {
	Level      string `yaml:"level" env:"XPOST_LOG_LEVEL, overwrite"` // trace | debug | info | warn | error
	MaxAgeDays int    `yaml:"max_age_days"`                           // used by "xpost clean"
}

const (
	configFile = "config.yaml"

	// DefaultBaseURL is the local development backend.
	DefaultBaseURL = "http://localhost:8000"

	// HomeEnv overrides the state directory.
	HomeEnv = "XPOST_HOME"
)

// Dir returns the directory holding config, credential storage and logs.
// XPOST_HOME wins over ~/.xpost.
func Dir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".xpost"), nil
}

// ReadConfig reads config.yaml from dir.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to config.yaml in dir.
// Creates dir if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APIConfig{
			BaseURL: DefaultBaseURL,
		},
		Dashboard: DashboardConfig{
			SummaryDays: 30,
			RecentLimit: 10,
		},
		Tweets: TweetsConfig{
			ListLimit: 50,
		},
		Log: LogConfig{
			Level:      "info",
			MaxAgeDays: 30,
		},
	}
}

// Load resolves the configuration once at startup: config.yaml when present,
// defaults otherwise, then environment overrides.
func Load(ctx context.Context, dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = DefaultConfig()
	}

	if err := ApplyEnv(ctx, cfg, envconfig.OsLookuper()); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overwrites fields tagged with env from lookuper.
func ApplyEnv(ctx context.Context, cfg *Config, lookuper envconfig.Lookuper) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   cfg,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("applying environment: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail on first request.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api.base_url %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api.base_url %q: scheme must be http or https", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid api.timeout_seconds %d: must not be negative", c.API.TimeoutSeconds)
	}
	return nil
}
