package config

const (
	defaultDataDir           = "~/.local/share/cartelera"
	defaultLogDir            = "~/.local/share/cartelera/logs"
	defaultCacheDir          = "~/.cache/cartelera"
	defaultScrapeTimeout     = 20
	defaultScrapeConcurrency = 4
	defaultUserAgent         = "Mozilla/5.0 (X11; Linux x86_64) cartelera/1.0"
	defaultLetterboxdBaseURL = "https://letterboxd.com"
	defaultLetterboxdTimeout = 15
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBLanguage      = "es-ES"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			CacheDir: defaultCacheDir,
		},
		Scrape: Scrape{
			RequestTimeout: defaultScrapeTimeout,
			Concurrency:    defaultScrapeConcurrency,
			UserAgent:      defaultUserAgent,
		},
		Letterboxd: Letterboxd{
			BaseURL:        defaultLetterboxdBaseURL,
			RequestTimeout: defaultLetterboxdTimeout,
		},
		TMDB: TMDB{
			BaseURL:  defaultTMDBBaseURL,
			Language: defaultTMDBLanguage,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
