package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cartelera/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, path, exists, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatalf("missing file reported as existing at %s", path)
	}
	if cfg.Letterboxd.BaseURL != "https://letterboxd.com" {
		t.Errorf("unexpected default base url %q", cfg.Letterboxd.BaseURL)
	}
	if cfg.Scrape.Concurrency != 4 || cfg.Scrape.RequestTimeout != 20 {
		t.Errorf("unexpected scrape defaults %+v", cfg.Scrape)
	}
	if cfg.TMDB.Language != "es-ES" {
		t.Errorf("unexpected default language %q", cfg.TMDB.Language)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"

[scrape]
theaters = ["golem"]
concurrency = 2

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected %s to be read, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(dir, "data") {
		t.Errorf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if len(cfg.Scrape.Theaters) != 1 || cfg.Scrape.Theaters[0] != "golem" {
		t.Errorf("unexpected theaters %v", cfg.Scrape.Theaters)
	}
	if cfg.Scrape.Concurrency != 2 {
		t.Errorf("unexpected concurrency %d", cfg.Scrape.Concurrency)
	}
	if cfg.Scrape.RequestTimeout != 20 {
		t.Errorf("unset field lost its default: %d", cfg.Scrape.RequestTimeout)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format not lowercased: %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"zero concurrency", "[scrape]\nconcurrency = -1\n", "scrape.concurrency"},
		{"empty rating base url", "[letterboxd]\nbase_url = \"  \"\n", "letterboxd.base_url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadReadsAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Fatalf("environment key ignored, got %q", cfg.TMDB.APIKey)
	}
}

func TestLoadPrefersFileAPIKeyOverEnvironment(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[tmdb]\napi_key = \"file-key\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TMDB.APIKey != "file-key" {
		t.Fatalf("file key overridden, got %q", cfg.TMDB.APIKey)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatalf("expected error when the file already exists")
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[letterboxd]\nbase_url = \"https://letterboxd.com/\"\n[tmdb]\nbase_url = \"https://api.themoviedb.org/3/\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.HasSuffix(cfg.Letterboxd.BaseURL, "/") || strings.HasSuffix(cfg.TMDB.BaseURL, "/") {
		t.Fatalf("trailing slash kept: %q %q", cfg.Letterboxd.BaseURL, cfg.TMDB.BaseURL)
	}
}
