package catalog_test

import (
	"testing"

	"cartelera/internal/catalog"
	"cartelera/internal/textutil"
)

func TestFilmKeyPrefersIdentityURL(t *testing.T) {
	film := catalog.Film{
		Title:       "Close-Up",
		Year:        1990,
		IdentityURL: "https://letterboxd.com/film/close-up/",
	}
	if got := film.Key(textutil.SearchKey); got != film.IdentityURL {
		t.Fatalf("expected identity key, got %q", got)
	}

	film.IdentityURL = ""
	if got := film.Key(textutil.SearchKey); got != "close up|1990" {
		t.Fatalf("expected title key, got %q", got)
	}
}

func TestFilmCloneIsIndependent(t *testing.T) {
	st, _ := catalog.ParseShowTime("2026-03-01 20:00")
	film := catalog.Film{
		Title:    "Persona",
		Sessions: []catalog.Session{{ShowTime: st, Location: "Golem"}},
	}
	film.Genres = []string{"Drama"}

	clone := film.Clone()
	clone.Sessions[0].Location = "changed"
	clone.Genres[0] = "changed"

	if film.Sessions[0].Location != "Golem" || film.Genres[0] != "Drama" {
		t.Fatalf("clone shares backing arrays with original")
	}
}

func TestDatasetSortIsDeterministic(t *testing.T) {
	ds := catalog.Dataset{Films: []catalog.Film{
		{Title: "B", Year: 2000},
		{Title: "A", Year: 2010},
		{Title: "A", Year: 1990},
	}}
	ds.Sort()

	if ds.Films[0].Title != "A" || ds.Films[0].Year != 1990 {
		t.Fatalf("unexpected first film: %+v", ds.Films[0])
	}
	if ds.Films[2].Title != "B" {
		t.Fatalf("unexpected last film: %+v", ds.Films[2])
	}
}
