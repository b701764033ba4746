package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/tokenscope-ai/tokenscope/pkg/pricing"
)

// Config holds all tokenscope configuration.
type Config struct {
	StorageDir    string                 `yaml:"storage_dir"`
	DBFile        string                 `yaml:"db_file"`
	LimitsFile    string                 `yaml:"limits_file"`
	RetentionDays int                    `yaml:"retention_days"`
	Pricing       []pricing.ModelPricing `yaml:"pricing"`
}

// Default returns a Config with sensible defaults. The storage directory
// is per-user; falling back to the working directory keeps headless
// environments without a home directory working.
func Default() *Config {
	dir := ".tokenscope"
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, ".tokenscope")
	}
	return &Config{
		StorageDir:    dir,
		DBFile:        "token_usage.db",
		LimitsFile:    "monitor_config.json",
		RetentionDays: 90,
	}
}

// Load reads a YAML config file and expands environment variables.
// A missing file is not an error: defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// DBPath is the full path of the usage database.
func (c *Config) DBPath() string {
	return filepath.Join(c.StorageDir, c.DBFile)
}

// LimitsPath is the full path of the subscription limits file.
func (c *Config) LimitsPath() string {
	return filepath.Join(c.StorageDir, c.LimitsFile)
}
