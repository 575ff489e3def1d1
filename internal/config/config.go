// Package config loads the optional rvpacker.toml tool configuration. The
// file supplies defaults for flags that rarely change between invocations;
// a missing file is legal and yields the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFileName is probed in the working directory when no explicit
// config path is given.
const DefaultFileName = "rvpacker.toml"

// Paths contains directory defaults.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
}

// Logging contains logger defaults.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the resolved tool configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths:   Paths{InputDir: "./"},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads the configuration at path, or the default file when path is
// empty. A missing default file yields Default(); a missing explicit path
// is an error.
func Load(path string) (*Config, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Paths.InputDir = strings.TrimSpace(c.Paths.InputDir)
	c.Paths.OutputDir = strings.TrimSpace(c.Paths.OutputDir)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Paths.InputDir == "" {
		c.Paths.InputDir = "./"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

func (c *Config) validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}
	return nil
}
