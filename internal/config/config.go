// Package config handles persistent user configuration for studysync.
//
// Configuration is stored as JSON at ~/.config/studysync/config.json (or
// the platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	appDir   = "studysync"
	fileName = "config.json"

	// EnvAPIURL overrides the configured API URL.
	EnvAPIURL = "STUDYSYNC_API_URL"

	DefaultAPIURL        = "http://localhost:3000"
	DefaultProbeInterval = 15 * time.Second
	DefaultDrainInterval = 30 * time.Second
	DefaultLogLevel      = "info"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations. Empty
// fields fall back to defaults through the accessor methods.
type Config struct {
	APIURL        string `json:"api_url,omitempty"`
	ProbeURL      string `json:"probe_url,omitempty"`
	ProbeInterval string `json:"probe_interval,omitempty"`
	DrainInterval string `json:"drain_interval,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

// EffectiveAPIURL returns the API base URL: the environment override,
// then the configured value, then DefaultAPIURL.
func (c *Config) EffectiveAPIURL() string {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		return strings.TrimRight(v, "/")
	}
	if c.APIURL != "" {
		return strings.TrimRight(c.APIURL, "/")
	}
	return DefaultAPIURL
}

// EffectiveProbeURL returns the connectivity probe URL, defaulting to the
// API health endpoint.
func (c *Config) EffectiveProbeURL() string {
	if c.ProbeURL != "" {
		return c.ProbeURL
	}
	return c.EffectiveAPIURL() + "/api/health"
}

// EffectiveProbeInterval returns the probe interval or its default.
func (c *Config) EffectiveProbeInterval() time.Duration {
	return durationOr(c.ProbeInterval, DefaultProbeInterval)
}

// EffectiveDrainInterval returns the idle drain interval or its default.
func (c *Config) EffectiveDrainInterval() time.Duration {
	return durationOr(c.DrainInterval, DefaultDrainInterval)
}

// EffectiveLogLevel returns the log level or its default.
func (c *Config) EffectiveLogLevel() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
