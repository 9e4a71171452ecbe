package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.CacheDir == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if c.Scrape.RequestTimeout <= 0 {
		return errors.New("scrape.request_timeout must be positive")
	}
	if c.Scrape.Concurrency <= 0 {
		return errors.New("scrape.concurrency must be positive")
	}
	if c.Letterboxd.BaseURL == "" {
		return errors.New("letterboxd.base_url must be set")
	}
	if c.Letterboxd.RequestTimeout <= 0 {
		return errors.New("letterboxd.request_timeout must be positive")
	}
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must be set")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
