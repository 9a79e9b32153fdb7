// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and environment on top.
// - Validation errors wrap ErrInvalidConfig, loading errors wrap ErrLoadConfig.
package config

import (
	"fmt"
	"time"
)

// Snapshot backends.
const (
	SnapshotBackendFile   = "file"
	SnapshotBackendSQLite = "sqlite"
)

// MetricRange is the raw interval a scoring metric is normalized against.
type MetricRange struct {
	Min float64 `koanf:"min"`
	Max float64 `koanf:"max"`
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CatalogPath points at the tools YAML. Empty uses the embedded catalog.
	CatalogPath string `koanf:"catalog_path"`

	// RegistryPath points at the comparisons YAML. Empty uses the embedded registry.
	RegistryPath string `koanf:"registry_path"`

	// SnapshotBackend is "file" (JSON document) or "sqlite".
	SnapshotBackend string `koanf:"snapshot_backend"`

	// SnapshotPath is the JSON file or sqlite database path.
	SnapshotPath string `koanf:"snapshot_path"`

	// SnapshotInterval is how often the recorder checks for a week rollover.
	// Zero disables the recorder.
	SnapshotInterval time.Duration `koanf:"snapshot_interval"`

	// MoversLimit is the default number of movers in a leaderboard payload.
	MoversLimit int `koanf:"movers_limit"`

	// MaxMoversLimit caps GET /api/leaderboard?movers.
	MaxMoversLimit int `koanf:"max_movers_limit"`

	// MetricWeights maps metric names to their composite weight. Empty uses
	// the built-in weights.
	MetricWeights map[string]float64 `koanf:"metric_weights"`

	// MetricRanges overrides the normalization range per metric.
	MetricRanges map[string]MetricRange `koanf:"metric_ranges"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		SnapshotBackend:  SnapshotBackendFile,
		SnapshotPath:     "data/leaderboard-snapshot.json",
		SnapshotInterval: time.Hour,
		MoversLimit:      5,
		MaxMoversLimit:   50,
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.SnapshotBackend != SnapshotBackendFile && c.SnapshotBackend != SnapshotBackendSQLite:
		return fmt.Errorf("%w: snapshot_backend must be %q or %q, got %q", ErrInvalidConfig, SnapshotBackendFile, SnapshotBackendSQLite, c.SnapshotBackend)
	case c.SnapshotPath == "":
		return fmt.Errorf("%w: snapshot_path must not be empty", ErrInvalidConfig)
	case c.SnapshotInterval < 0:
		return fmt.Errorf("%w: snapshot_interval must not be negative", ErrInvalidConfig)
	case c.MoversLimit < 0:
		return fmt.Errorf("%w: movers_limit must not be negative", ErrInvalidConfig)
	case c.MaxMoversLimit < c.MoversLimit:
		return fmt.Errorf("%w: max_movers_limit (%d) is below movers_limit (%d)", ErrInvalidConfig, c.MaxMoversLimit, c.MoversLimit)
	}
	return nil
}
