// Package config loads the settings of the sakila command.
//
// Settings are resolved from, lowest to highest precedence: built-in
// defaults, a YAML file (velq.yaml), VELQ_* environment variables and
// flags that were set explicitly on the command line.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/syssam/velq/dialect"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "velq.yaml"

// EnvPrefix prefixes the environment variables read by Load.
const EnvPrefix = "VELQ_"

// Output formats.
const (
	OutputTable    = "table"
	OutputCSV      = "csv"
	OutputMarkdown = "markdown"
)

// Config holds the resolved settings.
type Config struct {
	Driver        string        `koanf:"driver"`
	DSN           string        `koanf:"dsn"`
	Debug         bool          `koanf:"debug"`
	SlowThreshold time.Duration `koanf:"slow_threshold"`
	LogLevel      string        `koanf:"log_level"`
	Output        string        `koanf:"output"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// Defaults returns the default settings.
func Defaults() map[string]any {
	return map[string]any{
		"driver":         dialect.SQLite,
		"dsn":            "file::memory:?cache=shared&_pragma=foreign_keys(1)",
		"debug":          false,
		"slow_threshold": "200ms",
		"log_level":      "info",
		"output":         OutputTable,
	}
}

// Load resolves the settings. An empty path means DefaultFile when it
// exists; an explicit path must exist. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}

	used := path
	if used == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			used = DefaultFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", used, err)
		}
	}

	// VELQ_SLOW_THRESHOLD -> slow_threshold
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("config: loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.File = used
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports invalid settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Driver {
	case dialect.SQLite, dialect.Postgres, dialect.MySQL:
	default:
		errs = append(errs, fmt.Errorf("config: unsupported driver %q", c.Driver))
	}
	if c.DSN == "" {
		errs = append(errs, errors.New("config: dsn is required"))
	}
	if !slices.Contains([]string{OutputTable, OutputCSV, OutputMarkdown}, c.Output) {
		errs = append(errs, fmt.Errorf("config: unknown output format %q", c.Output))
	}
	if _, err := c.level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	if c.Debug && level > slog.LevelDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log_level: %w", err)
	}
	return l, nil
}
