package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "api-url").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)

	// Effective returns the value in force, falling back to the default
	// when the key is unset.
	Effective func(cfg *Config) string

	// Validate rejects malformed values before Set. Optional.
	Validate func(value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "api-url",
		Description: "Base URL of the learning-management API",
		Get:         func(cfg *Config) string { return cfg.APIURL },
		Set:         func(cfg *Config, v string) { cfg.APIURL = v },
		Effective:   func(cfg *Config) string { return cfg.EffectiveAPIURL() },
		Validate:    validateURL,
	},
	{
		Name:        "probe-url",
		Description: "URL checked to detect connectivity (default: <api-url>/api/health)",
		Get:         func(cfg *Config) string { return cfg.ProbeURL },
		Set:         func(cfg *Config, v string) { cfg.ProbeURL = v },
		Effective:   func(cfg *Config) string { return cfg.EffectiveProbeURL() },
		Validate:    validateURL,
	},
	{
		Name:        "probe-interval",
		Description: "Time between connectivity checks, e.g. 15s",
		Get:         func(cfg *Config) string { return cfg.ProbeInterval },
		Set:         func(cfg *Config, v string) { cfg.ProbeInterval = v },
		Effective:   func(cfg *Config) string { return cfg.EffectiveProbeInterval().String() },
		Validate:    validateDuration,
	},
	{
		Name:        "drain-interval",
		Description: "Time between periodic queue drains, e.g. 30s",
		Get:         func(cfg *Config) string { return cfg.DrainInterval },
		Set:         func(cfg *Config, v string) { cfg.DrainInterval = v },
		Effective:   func(cfg *Config) string { return cfg.EffectiveDrainInterval().String() },
		Validate:    validateDuration,
	},
	{
		Name:        "log-level",
		Description: "Log verbosity: debug, info, warn or error",
		Get:         func(cfg *Config) string { return cfg.LogLevel },
		Set:         func(cfg *Config, v string) { cfg.LogLevel = strings.ToLower(v) },
		Effective:   func(cfg *Config) string { return cfg.EffectiveLogLevel() },
		Validate:    validateLogLevel,
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}

func validateURL(v string) error {
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an http(s) URL", v)
	}
	return nil
}

func validateDuration(v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%q is not a duration (e.g. 30s, 2m)", v)
	}
	if d < time.Second {
		return fmt.Errorf("%q is shorter than 1s", v)
	}
	return nil
}

// LogLevels lists the accepted log-level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

func validateLogLevel(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, l := range LogLevels {
		if v == l {
			return nil
		}
	}
	return fmt.Errorf("%q is not one of %s", v, strings.Join(LogLevels, ", "))
}
