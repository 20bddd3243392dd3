// Package config loads settings from an optional YAML file and MYMONEY_*
// environment variables. Command-line flags override both.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/mymoney/report"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = ".mymoney.yaml"

// Config holds all application configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	Telemetry bool   `yaml:"telemetry"`
	Load      struct {
		// MaxSize rejects command files larger than this many bytes. Zero
		// means no limit.
		MaxSize int64 `yaml:"max_size"`
	} `yaml:"load"`
	Report struct {
		Format string `yaml:"format"`
	} `yaml:"report"`
	Record struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"record"`
	Watch struct {
		Debounce time.Duration `yaml:"debounce"`
	} `yaml:"watch"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MYMONEY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("MYMONEY_TELEMETRY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("MYMONEY_TELEMETRY: %w", err)
		}
		c.Telemetry = b
	}
	if v := os.Getenv("MYMONEY_LOAD_MAX_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MYMONEY_LOAD_MAX_SIZE: %w", err)
		}
		c.Load.MaxSize = n
	}
	if v := os.Getenv("MYMONEY_REPORT_FORMAT"); v != "" {
		c.Report.Format = v
	}
	if v := os.Getenv("MYMONEY_SQLITE_PATH"); v != "" {
		c.Record.SQLitePath = v
	}
	if v := os.Getenv("MYMONEY_WATCH_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MYMONEY_WATCH_DEBOUNCE: %w", err)
		}
		c.Watch.Debounce = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = logrus.WarnLevel.String()
	}
	if c.Report.Format == "" {
		c.Report.Format = string(report.Table)
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 100 * time.Millisecond
	}
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := report.ParseFormat(c.Report.Format); err != nil {
		return fmt.Errorf("report.format: %w", err)
	}
	if c.Load.MaxSize < 0 {
		return fmt.Errorf("load.max_size must not be negative")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Level returns the parsed log level, falling back to warn.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.WarnLevel
	}
	return level
}
