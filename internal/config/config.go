package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/veldin/siphon/internal/progress"
	"github.com/veldin/siphon/internal/storage"
)

// Config defines configuration for the siphon CLI. Source location and
// destination directory are per-invocation arguments and deliberately not
// part of it.
type Config struct {
	Workers      int    `yaml:"workers"`
	MaxGroupSize int64  `yaml:"max_group_size"`
	PerObject    bool   `yaml:"per_object"`
	Backend      string `yaml:"backend"`
	Progress     bool   `yaml:"progress"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Workers:      16,
		MaxGroupSize: 100 * 1024 * 1024, // 100MB
		Backend:      storage.BackendAuto,
		LogLevel:     "info",
	}
}

// yamlConfig is used for YAML unmarshaling with string group size.
type yamlConfig struct {
	Workers      int    `yaml:"workers"`
	MaxGroupSize string `yaml:"max_group_size"`
	PerObject    bool   `yaml:"per_object"`
	Backend      string `yaml:"backend"`
	Progress     bool   `yaml:"progress"`
	LogLevel     string `yaml:"log_level"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	if yc.MaxGroupSize != "" {
		size, err := progress.ParseBytes(yc.MaxGroupSize)
		if err != nil {
			return Config{}, fmt.Errorf("parse max_group_size: %w", err)
		}
		cfg.MaxGroupSize = size
	}
	cfg.PerObject = yc.PerObject
	cfg.Progress = yc.Progress
	if yc.Backend != "" {
		cfg.Backend = yc.Backend
	}
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables with the
// SIPHON_ prefix. A .env file in the working directory is honored first;
// a missing one is not an error.
func (c *Config) LoadFromEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv("SIPHON_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SIPHON_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("SIPHON_MAX_GROUP_SIZE"); v != "" {
		size, err := progress.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("parse SIPHON_MAX_GROUP_SIZE: %w", err)
		}
		c.MaxGroupSize = size
	}
	if v := os.Getenv("SIPHON_PER_OBJECT"); v != "" {
		c.PerObject = v == "true" || v == "1"
	}
	if v := os.Getenv("SIPHON_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("SIPHON_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("SIPHON_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.MaxGroupSize <= 0 && !c.PerObject {
		return errors.New("config: max_group_size must be positive")
	}
	switch c.Backend {
	case "", storage.BackendAuto, storage.BackendGsutil:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.MaxGroupSize != 0 {
		c.MaxGroupSize = override.MaxGroupSize
	}
	if override.PerObject {
		c.PerObject = override.PerObject
	}
	if override.Backend != "" {
		c.Backend = override.Backend
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.LogLevel != "" {
		c.LogLevel = override.LogLevel
	}
	return c
}
