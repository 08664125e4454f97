// Package config provides YAML configuration parsing for the gpswatch CLI.
//
// This package enables running gpswatch as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	address: localhost:2947
//	poll_interval: 500ms
//	read_timeout: 100ms
//	log_level: info
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval.
// This prevents accidental busy-looping against the daemon.
const minPollInterval = 10 * time.Millisecond

// Config is the root configuration structure for the gpswatch CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Address is the gpsd daemon address as host:port.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}.
	// Defaults to localhost:2947.
	Address string `yaml:"address"`

	// PollInterval is the delay between sampling iterations.
	// Accepts duration strings like "500ms", "1s". Defaults to 500ms.
	PollInterval Duration `yaml:"poll_interval"`

	// DialTimeout bounds connection establishment. Defaults to 2s.
	DialTimeout Duration `yaml:"dial_timeout"`

	// ReadTimeout bounds each per-poll daemon read. Defaults to 100ms.
	ReadTimeout Duration `yaml:"read_timeout"`

	// Foreground runs the sampling loop on the calling goroutine
	// instead of a background one. Defaults to false.
	Foreground bool `yaml:"foreground"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the address. Defaults are
// applied for Address (localhost:2947), PollInterval (500ms),
// DialTimeout (2s), ReadTimeout (100ms), and LogLevel (info).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Address == "" {
		cfg.Address = "localhost:2947"
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(500 * time.Millisecond)
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = Duration(2 * time.Second)
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = Duration(100 * time.Millisecond)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	expanded, err := expandEnvVars(c.Address)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	c.Address = expanded

	host, port, found := strings.Cut(c.Address, ":")
	if !found || host == "" || port == "" {
		return fmt.Errorf("address must be host:port, got %q", c.Address)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s",
			minPollInterval, c.PollInterval.Duration())
	}

	if c.DialTimeout.Duration() <= 0 {
		return fmt.Errorf("dial_timeout must be positive, got %s", c.DialTimeout.Duration())
	}

	if c.ReadTimeout.Duration() <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %s", c.ReadTimeout.Duration())
	}
	if c.ReadTimeout.Duration() >= c.PollInterval.Duration() {
		return fmt.Errorf("read_timeout (%s) must be shorter than poll_interval (%s)",
			c.ReadTimeout.Duration(), c.PollInterval.Duration())
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}
