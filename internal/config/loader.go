package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if DECOY_CONFIG is set
//  3. env (prefix DECOY_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("DECOY_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: DECOY_ADDR, DECOY_LABS_DIR, ...
	// Map env keys like DECOY_LABS_DIR -> labs_dir (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("DECOY_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "decoy_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.LabsDir == "" {
		return nil, fmt.Errorf("%w: labs_dir must not be empty", ErrInvalidConfig)
	}
	if cfg.ReaperIntervalMinutes < 0 || cfg.CompletedTTLHours < 0 {
		return nil, fmt.Errorf("%w: reaper settings must not be negative", ErrInvalidConfig)
	}
	if cfg.MaxEventBatch < 0 {
		return nil, fmt.Errorf("%w: max_event_batch must not be negative", ErrInvalidConfig)
	}
	return &cfg, nil
}
