package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Initialize loads, merges, validates, and returns ready-to-use
// configuration. This is the primary entry point for configuration
// loading, mirroring the teacher's Initialize(ctx, configDir) pipeline
// shape (pkg/config/loader.go): load YAML, expand env vars, merge over
// built-in defaults, validate, return.
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.InfoContext(ctx, "initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := NewValidator(cfg).ValidateAll(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	stats := cfg.Stats()
	log.InfoContext(ctx, "configuration initialized",
		"autonomy_level", stats.AutonomyLevel,
		"reliability_threshold", stats.ReliabilityThresh,
		"llm_enabled", stats.LLMEnabled,
		"max_concurrent_probes", stats.MaxConcurrentProbes)

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	path := filepath.Join(configDir, "anna.yaml")

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// fall through to parse
	case os.IsNotExist(err):
		// No user config is fine; built-in defaults stand alone.
		cfg := Defaults()
		cfg.configDir = configDir
		return cfg, nil
	default:
		return nil, NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	var user Config
	if err := yaml.Unmarshal(data, &user); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}

	merged, err := mergeOverDefaults(&user)
	if err != nil {
		return nil, NewLoadError(path, err)
	}
	merged.configDir = configDir
	return merged, nil
}
