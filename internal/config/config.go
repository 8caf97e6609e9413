// Package config loads replay settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete replay configuration
type Config struct {
	Recording      string       `yaml:"recording"`        // path to the JSON landmark recording
	Feature        string       `yaml:"feature"`          // HAND, POSE, FACE or HOLISTIC
	BatchInterval  int          `yaml:"batch_interval"`   // ticks between flushes (default: 1)
	TickIntervalMs int          `yaml:"tick_interval_ms"` // replay pace (default: 33)
	StorePath      string       `yaml:"store_path"`       // sqlite file for run history, empty disables
	Server         ServerConfig `yaml:"server"`
	Plugins        PluginConfig `yaml:"plugins"`
}

// PluginConfig selects external consumer plugins
type PluginConfig struct {
	Dir       string   `yaml:"dir"`
	Enabled   []string `yaml:"enabled"`
	TimeoutMs int      `yaml:"timeout_ms"` // per flush (default: 2000)
}

// ServerConfig contains HTTP/websocket settings
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Default returns a Config with default values applied
func Default() Config {
	return Config{
		Feature:        "POSE",
		BatchInterval:  1,
		TickIntervalMs: 33,
		Server: ServerConfig{
			Addr: ":8080",
		},
		Plugins: PluginConfig{
			TimeoutMs: 2000,
		},
	}
}

// TickInterval returns the replay pace as a duration
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// PluginTimeout returns the per-flush plugin timeout as a duration
func (c Config) PluginTimeout() time.Duration {
	return time.Duration(c.Plugins.TimeoutMs) * time.Millisecond
}

// Read parses a YAML configuration file without validating it. Fields
// absent from the file keep their default values.
func Read(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Load reads, parses and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
