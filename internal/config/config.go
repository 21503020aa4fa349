package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. REPO_ISSUES_PORT.
	EnvPrefix = "REPO_ISSUES"

	DefaultPort                 = 8080
	DefaultGitHubURL            = "https://api.github.com"
	DefaultCacheDurationSeconds = 60
	DefaultMaxTitleLength       = 25
	DefaultSessionIdleMinutes   = 60
)

// Config holds application configuration.
type Config struct {
	Port int `mapstructure:"port"`

	GitHubURL   string `mapstructure:"github_url"`
	GitHubToken string `mapstructure:"github_token"`

	// CacheDurationSeconds is how long issue listings are cached.
	CacheDurationSeconds int `mapstructure:"cache_duration_seconds"`

	// KeyFile is where `key save` stores a user-supplied API key.
	KeyFile string `mapstructure:"key_file"`

	MaxTitleLength     int `mapstructure:"max_title_length"`
	SessionIdleMinutes int `mapstructure:"session_idle_minutes"`
}

// Load builds the configuration from v (config file, flags and
// REPO_ISSUES_* variables), falling back to the plain PORT, GITHUB_URL and
// GITHUB_TOKEN variables, then to defaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvFallbacks(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// NewViper returns a viper instance reading REPO_ISSUES_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"port", "github_url", "github_token", "cache_duration_seconds",
		"key_file", "max_title_length", "session_idle_minutes",
	} {
		_ = v.BindEnv(key)
	}
	return v
}

func applyEnvFallbacks(cfg *Config) {
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			if p, err := strconv.Atoi(portStr); err == nil {
				cfg.Port = p
			}
		}
	}
	if cfg.GitHubURL == "" {
		cfg.GitHubURL = os.Getenv("GITHUB_URL")
	}
	if cfg.GitHubToken == "" {
		cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	}
}

// applyDefaults sets default values for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.GitHubURL == "" {
		cfg.GitHubURL = DefaultGitHubURL
	}
	if cfg.CacheDurationSeconds <= 0 {
		cfg.CacheDurationSeconds = DefaultCacheDurationSeconds
	}
	if cfg.MaxTitleLength <= 0 {
		cfg.MaxTitleLength = DefaultMaxTitleLength
	}
	if cfg.SessionIdleMinutes <= 0 {
		cfg.SessionIdleMinutes = DefaultSessionIdleMinutes
	}
	if cfg.KeyFile == "" {
		cfg.KeyFile = DefaultKeyFile()
	}
}

// DefaultKeyFile returns the per-user key file location.
func DefaultKeyFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "repo-issues", "key.yaml")
}

// HasGitHubToken returns true if a default GitHub token is configured.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}
