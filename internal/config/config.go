// Package config loads the evchan command configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Buffer kinds accepted by Config.Buffer.
const (
	BufferNone      = "none"
	BufferFixed     = "fixed"
	BufferDropping  = "dropping"
	BufferSliding   = "sliding"
	BufferExpanding = "expanding"
)

// Log formats accepted by Config.LogFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var errInvalid = errors.New("invalid configuration")

// Config is the configuration of the tail command.
type Config struct {
	Buffer      string `yaml:"buffer"`
	Size        int    `yaml:"size"`
	Match       string `yaml:"match"`
	Follow      bool   `yaml:"follow"`
	FromEnd     bool   `yaml:"from_end"`
	Poll        bool   `yaml:"poll"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Buffer:    BufferExpanding,
		Size:      16,
		LogLevel:  logrus.InfoLevel.String(),
		LogFormat: FormatText,
	}
}

// Load reads the YAML file at path on top of [Default]. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML into cfg. Keys missing from data keep their current
// values; unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil // empty document
		}
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c Config) Validate() error {
	switch c.Buffer {
	case BufferNone:
	case BufferFixed, BufferDropping, BufferSliding, BufferExpanding:
		if c.Size <= 0 {
			return fmt.Errorf("%w: size must be > 0 for %s buffer, got %d", errInvalid, c.Buffer, c.Size)
		}
	default:
		return fmt.Errorf("%w: unknown buffer %q", errInvalid, c.Buffer)
	}

	if c.Match != "" {
		if _, err := regexp.Compile(c.Match); err != nil {
			return fmt.Errorf("%w: match: %v", errInvalid, err)
		}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", errInvalid, err)
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log_format %q", errInvalid, c.LogFormat)
	}
	return nil
}

// IsInvalid reports whether err came from [Config.Validate].
func IsInvalid(err error) bool {
	return errors.Is(err, errInvalid)
}
