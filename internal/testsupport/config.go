// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"cartelera/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.TMDB.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithoutTMDBKey clears the TMDB credential on the test config.
func WithoutTMDBKey() ConfigOption {
	return func(cfg *config.Config) {
		cfg.TMDB.APIKey = ""
	}
}

// WithTheaters limits the configured theater set.
func WithTheaters(keys ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Scrape.Theaters = keys
	}
}
