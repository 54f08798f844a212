// Package config loads the service's runtime parameters from a file,
// format dispatched by extension. Zero values mean "unspecified" and are
// filled in by scheduler.Config.withDefaults at construction time.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config mirrors the tunables scheduler.Config accepts, plus the settings
// needed to stand up the surrounding process (HTTP address, log level,
// worker manifest directory). Durations are stored as strings so the file
// formats stay plain scalars; ParseDuration resolves them.
type Config struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`

	WorkersDir string `json:"workers_dir" yaml:"workers_dir" toml:"workers_dir"`

	QueueDepth             int    `json:"queue_depth" yaml:"queue_depth" toml:"queue_depth"`
	InitialBackoff         string `json:"initial_backoff" yaml:"initial_backoff" toml:"initial_backoff"`
	MaxBackoff             string `json:"max_backoff" yaml:"max_backoff" toml:"max_backoff"`
	DefaultGrace           string `json:"default_grace" yaml:"default_grace" toml:"default_grace"`
	LMExclusiveWorkerID    string `json:"lm_exclusive_worker_id" yaml:"lm_exclusive_worker_id" toml:"lm_exclusive_worker_id"`
	FirstLMWorkerExclusive bool   `json:"first_lm_worker_exclusive" yaml:"first_lm_worker_exclusive" toml:"first_lm_worker_exclusive"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ParseDuration parses d with time.ParseDuration, returning fallback for an
// empty string so an unset field falls through to scheduler.Config's own
// default rather than becoming a zero-valued "return instantly" duration.
func ParseDuration(d string, fallback time.Duration) (time.Duration, error) {
	if d == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(d)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", d, err)
	}
	return parsed, nil
}
