package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cartelera/internal/catalog"
	"cartelera/internal/scrape"
	"cartelera/internal/textutil"
)

// ErrBadShowtime marks a record whose showtime cannot be parsed. Callers
// drop the record with a warning; the batch keeps going.
var ErrBadShowtime = errors.New("unparseable showtime")

var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// dubbedHints and originalHints classify the free-text version tags the
// theaters publish.
var (
	originalHints = []string{"vose", "vos", "vo", "v.o", "subtitulada", "subtitulado", "original"}
	dubbedHints   = []string{"doblada", "doblado", "dubbed", "castellano", "espanol"}
)

// Session builds the canonical session from one raw record.
func Session(rec scrape.RawScreeningRecord) (catalog.Session, error) {
	showTime, err := catalog.ParseShowTime(rec.ShowTimeText)
	if err != nil {
		return catalog.Session{}, fmt.Errorf("%w: %s", ErrBadShowtime, rec.ShowTimeText)
	}

	location := strings.TrimSpace(rec.Location)
	if location == "" {
		location = catalog.UnknownLocation
	}

	return catalog.Session{
		ShowTime:   showTime,
		Location:   location,
		TicketsURL: strings.TrimSpace(rec.TicketsURL),
		InfoURL:    strings.TrimSpace(rec.FilmURL),
		Version:    Version(rec.VersionText),
	}, nil
}

// Version maps free-text audio version tags onto the fixed enum.
func Version(text string) catalog.Version {
	cleaned := textutil.StripDiacritics(strings.ToLower(strings.TrimSpace(text)))
	cleaned = strings.Trim(cleaned, "().")
	if cleaned == "" {
		return catalog.VersionUnknown
	}
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	for _, hint := range dubbedHints {
		if strings.Contains(cleaned, hint) {
			return catalog.VersionDubbed
		}
	}
	for _, hint := range originalHints {
		if cleaned == hint || strings.Contains(cleaned, hint) {
			return catalog.VersionOriginal
		}
	}
	return catalog.VersionUnknown
}

// Year extracts a plausible release year from scraped year text.
func Year(text string) int {
	match := yearPattern.FindString(text)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}
