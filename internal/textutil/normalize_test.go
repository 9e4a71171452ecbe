package textutil_test

import (
	"testing"

	"cartelera/internal/textutil"
)

func TestStripDiacritics(t *testing.T) {
	cases := map[string]string{
		"Almodóvar":          "Almodovar",
		"Anatomía de un año": "Anatomia de un ano",
		"plain":              "plain",
	}
	for in, want := range cases {
		if got := textutil.StripDiacritics(in); got != want {
			t.Fatalf("StripDiacritics(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeTitleCollapsesVariants(t *testing.T) {
	a := textutil.NormalizeTitle("Anatomía de una Caída")
	b := textutil.NormalizeTitle("  anatomia de una caida ")
	if a != b {
		t.Fatalf("variants did not normalize equal: %q vs %q", a, b)
	}
	if got := textutil.NormalizeTitle("Close-Up (V.O.S.E.)"); got != "close up v o s e" {
		t.Fatalf("unexpected normalization %q", got)
	}
}

func TestSearchKeyEncodesUnknownYear(t *testing.T) {
	if got := textutil.SearchKey("Stalker", 1979); got != "stalker|1979" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := textutil.SearchKey("Stalker", 0); got != "stalker|" {
		t.Fatalf("unexpected key for unknown year %q", got)
	}
}

func TestSlugifyName(t *testing.T) {
	if got := textutil.SlugifyName("Víctor Erice"); got != "victor-erice" {
		t.Fatalf("unexpected slug %q", got)
	}
	if got := textutil.SlugifyName("  "); got != "" {
		t.Fatalf("expected empty slug, got %q", got)
	}
}
