package scrape

import (
	"context"
	"time"
)

// CinemaInfo describes a supported theater.
type CinemaInfo struct {
	// Key is the short identifier used in config and logs, e.g. "cineteca".
	Key string
	// Name is the display name, e.g. "Cineteca Madrid".
	Name string
	// BaseURL is the root of the cinema website.
	BaseURL string
	// UpdatePeriod is how often the cinema publishes its program:
	// "weekly" or "monthly".
	UpdatePeriod string
}

// RawScreeningRecord is one scraped screening before normalization: one
// showtime at one venue, with the film-level fields the theater page
// exposes. Records are transient pipeline input and are never persisted.
type RawScreeningRecord struct {
	Theater     string
	TheaterName string
	Title       string
	Director    string
	YearText    string
	// FilmURL is the theater's film detail page, used to group records
	// belonging to the same film within one scrape batch.
	FilmURL      string
	ShowTimeText string
	Location     string
	TicketsURL   string
	VersionText  string
}

// Scraper is the capability every theater adapter implements.
type Scraper interface {
	Info() CinemaInfo
	// Fetch returns all screening records between from and to, inclusive.
	Fetch(ctx context.Context, from, to time.Time) ([]RawScreeningRecord, error)
}
