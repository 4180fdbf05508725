// Package config loads sidescripts settings from a YAML file, a .env file
// and SIDESCRIPTS_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/taigrr/sidescripts/internal/metadata"
	"github.com/taigrr/sidescripts/internal/types"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "SIDESCRIPTS_"

	// EnvConfig points at the YAML config file when --config is not given
	EnvConfig = EnvPrefix + "CONFIG"
)

// Config holds application configuration
type Config struct {
	// PrettyName is the file name of the indented dump
	PrettyName string `yaml:"prettyName"`

	// MinifiedName is the file name of the single-line dump
	MinifiedName string `yaml:"minifiedName"`

	// StandardSeparators drops the space before commas in the indented dump
	StandardSeparators bool `yaml:"standardSeparators"`

	// LegacyJSON reports .json children as paths instead of parsing them
	LegacyJSON bool `yaml:"legacyJson"`

	// LogLevel is a zap level name (debug, info, warn, error)
	LogLevel string `yaml:"logLevel"`

	// Filter narrows the images a batch run picks up
	Filter types.PathFilterConfig `yaml:"filter"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		PrettyName:   metadata.DefaultPrettyName,
		MinifiedName: metadata.DefaultMinifiedName,
		LogLevel:     "info",
	}
}

// Load builds the configuration. path may be empty, in which case
// $SIDESCRIPTS_CONFIG is used if set. A missing file named through the
// environment is an error just like one named on the command line.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := env("PRETTY_NAME"); v != "" {
		c.PrettyName = v
	}
	if v := env("MINIFIED_NAME"); v != "" {
		c.MinifiedName = v
	}
	if v := env("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	for key, dst := range map[string]*bool{
		"STANDARD_SEPARATORS": &c.StandardSeparators,
		"LEGACY_JSON":         &c.LegacyJSON,
	} {
		raw := env(key)
		if raw == "" {
			continue
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, key, raw, err)
		}
		*dst = b
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + key))
}

// Validate checks the dump names and the log level.
func (c *Config) Validate() error {
	for _, name := range []string{c.PrettyName, c.MinifiedName} {
		if name == "" {
			return errors.New("dump file names must not be empty")
		}
		if filepath.Base(name) != name || name == "." || name == ".." {
			return fmt.Errorf("dump file name %q must be a plain file name", name)
		}
	}
	if c.PrettyName == c.MinifiedName {
		return fmt.Errorf("pretty and minified dumps share the name %q", c.PrettyName)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// MetadataOptions converts the configuration into gatherer options.
func (c *Config) MetadataOptions() metadata.Options {
	return metadata.Options{
		PrettyName:         c.PrettyName,
		MinifiedName:       c.MinifiedName,
		StandardSeparators: c.StandardSeparators,
		LegacyJSON:         c.LegacyJSON,
	}
}
