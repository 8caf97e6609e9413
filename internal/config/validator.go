package config

import (
	"fmt"

	"github.com/ayusman/mocap-replay/internal/detector"
)

// Validate checks if the configuration is valid and fills unset defaults
func Validate(cfg *Config) error {
	if cfg.Recording == "" {
		return fmt.Errorf("recording is required")
	}

	if _, err := detector.ParseKind(cfg.Feature); err != nil {
		return fmt.Errorf("feature: %w", err)
	}

	if cfg.BatchInterval == 0 {
		cfg.BatchInterval = 1
	}
	if cfg.BatchInterval < 0 {
		return fmt.Errorf("batch_interval must be > 0, got %d", cfg.BatchInterval)
	}

	if cfg.TickIntervalMs == 0 {
		cfg.TickIntervalMs = 33
	}
	if cfg.TickIntervalMs < 0 {
		return fmt.Errorf("tick_interval_ms must be > 0, got %d", cfg.TickIntervalMs)
	}

	if cfg.Plugins.TimeoutMs < 0 {
		return fmt.Errorf("plugins.timeout_ms must be > 0, got %d", cfg.Plugins.TimeoutMs)
	}
	if len(cfg.Plugins.Enabled) > 0 && cfg.Plugins.Dir == "" {
		return fmt.Errorf("plugins.dir is required when plugins are enabled")
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return nil
}
