package config

import (
	"fmt"
	"log/slog"

	"github.com/Dukat-Gul/gpswatch"
)

// Level returns the slog level for the configured log_level.
//
// The config must have been produced by [Load] or [Parse], which
// guarantee a valid level; an unexpected value falls back to info.
func (c *Config) Level() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// BuildOptions converts a validated [Config] into SDK options for
// [gpswatch.New].
//
// The logger is passed through so the CLI can construct one handler
// honoring the configured level and share it with the library.
func BuildOptions(cfg *Config, logger *slog.Logger) ([]gpswatch.Option, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	opts := []gpswatch.Option{
		gpswatch.WithAddress(cfg.Address),
		gpswatch.WithPollInterval(cfg.PollInterval.Duration()),
		gpswatch.WithDialTimeout(cfg.DialTimeout.Duration()),
		gpswatch.WithReadTimeout(cfg.ReadTimeout.Duration()),
	}
	if cfg.Foreground {
		opts = append(opts, gpswatch.WithForeground())
	}
	if logger != nil {
		opts = append(opts, gpswatch.WithLogger(logger))
	}
	return opts, nil
}
