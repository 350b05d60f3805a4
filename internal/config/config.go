// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// LabsDir points at the directory holding the lab index and definitions.
	LabsDir string `koanf:"labs_dir"`

	// MaxEventBatch caps how many events one POST may carry. Zero disables
	// the cap.
	MaxEventBatch int `koanf:"max_event_batch"`

	// ReaperIntervalMinutes sets how often completed sessions are swept.
	// Zero disables the reaper.
	ReaperIntervalMinutes int `koanf:"reaper_interval_minutes"`

	// CompletedTTLHours sets how long a completed session is retained
	// before the reaper may evict it.
	CompletedTTLHours int `koanf:"completed_ttl_hours"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		LabsDir:               "data/labs",
		MaxEventBatch:         500,
		ReaperIntervalMinutes: 10,
		CompletedTTLHours:     24,
	}
}
