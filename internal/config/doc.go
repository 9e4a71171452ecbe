// Package config loads and validates the TOML configuration for the
// cartelera pipeline: storage paths, scraper settings, and the external
// service credentials used by identity matching and enrichment.
package config
