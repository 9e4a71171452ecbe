package testsupport

import (
	"testing"

	"cartelera/internal/catalog"
)

// MustShowTime parses a showtime string, failing the test on error.
func MustShowTime(t testing.TB, value string) catalog.ShowTime {
	t.Helper()
	st, err := catalog.ParseShowTime(value)
	if err != nil {
		t.Fatalf("parse showtime %q: %v", value, err)
	}
	return st
}

// NewSession builds a session at the given showtime and location.
func NewSession(t testing.TB, showtime, location string) catalog.Session {
	t.Helper()
	return catalog.Session{
		ShowTime: MustShowTime(t, showtime),
		Location: location,
	}
}

// NewFilm builds a film with the given sessions.
func NewFilm(title string, year int, sessions ...catalog.Session) catalog.Film {
	return catalog.Film{
		Title:    title,
		Year:     year,
		Sessions: sessions,
	}
}
