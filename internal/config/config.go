// Package config loads weekplan settings from defaults, an optional YAML
// file and WEEKPLAN_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (WEEKPLAN_DATA_DIR, ...).
const EnvPrefix = "WEEKPLAN"

// FileName is the config file looked up in the data directory.
const FileName = "config.yaml"

// Config keys.
const (
	KeyDataDir   = "data_dir"
	KeyBackend   = "backend"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"
	KeyTimezone  = "timezone"
)

// Config holds runtime configuration.
type Config struct {
	DataDir   string `mapstructure:"data_dir"`
	Backend   string `mapstructure:"backend"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	// Timezone is an IANA name or "Local". "Today" is computed in it.
	Timezone string `mapstructure:"timezone"`
}

var validBackends = map[string]bool{"file": true, "sqlite": true}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var validFormats = map[string]bool{"json": true, "console": true}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:   filepath.Join(home, ".weekplan"),
		Backend:   "file",
		LogLevel:  "info",
		LogFormat: "json",
		Timezone:  "Local",
	}
}

// Load reads configuration. path names an explicit config file and must
// exist; when empty, <data dir>/config.yaml is read if present.
func Load(path string) (Config, error) {
	def := DefaultConfig()

	v := viper.New()
	v.SetDefault(KeyDataDir, def.DataDir)
	v.SetDefault(KeyBackend, def.Backend)
	v.SetDefault(KeyLogLevel, def.LogLevel)
	v.SetDefault(KeyLogFormat, def.LogFormat)
	v.SetDefault(KeyTimezone, def.Timezone)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		candidate := filepath.Join(v.GetString(KeyDataDir), FileName)
		if _, err := os.Stat(candidate); err == nil {
			v.SetConfigFile(candidate)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config %s: %w", candidate, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if !validBackends[c.Backend] {
		errs = append(errs, fmt.Errorf("invalid backend %q: must be one of: file, sqlite", c.Backend))
	}
	if !validLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("invalid log_level %q: must be one of: debug, info, warn, error", c.LogLevel))
	}
	if !validFormats[c.LogFormat] {
		errs = append(errs, fmt.Errorf("invalid log_format %q: must be one of: json, console", c.LogFormat))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location returns the timezone "today" is computed in.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
