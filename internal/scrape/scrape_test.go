package scrape_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"cartelera/internal/scrape"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

func TestRegistryKeysAreSorted(t *testing.T) {
	registry := scrape.NewRegistry(nil)
	got := registry.Keys()
	want := []string{"cine-paz", "cineteca", "golem"}
	if len(got) != len(want) {
		t.Fatalf("expected %d theaters, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected keys %v, got %v", want, got)
		}
	}
}

func TestRegistryLookupUnknownTheater(t *testing.T) {
	registry := scrape.NewRegistry(nil)
	if _, err := registry.Lookup("imaginary"); err == nil {
		t.Fatalf("expected error for unknown theater")
	}
}

func TestRegistrySelectDefaultsToAll(t *testing.T) {
	registry := scrape.NewRegistry(nil)
	scrapers, err := registry.Select(nil)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(scrapers) != 3 {
		t.Fatalf("expected every adapter, got %d", len(scrapers))
	}
	if scrapers[0].Info().Key != "cine-paz" {
		t.Fatalf("expected sorted order, got %q first", scrapers[0].Info().Key)
	}
}

func TestRegistrySelectSubset(t *testing.T) {
	registry := scrape.NewRegistry(nil)
	scrapers, err := registry.Select([]string{"golem", "cineteca"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(scrapers) != 2 || scrapers[0].Info().Key != "cineteca" || scrapers[1].Info().Key != "golem" {
		t.Fatalf("unexpected selection %v", scrapers)
	}

	if _, err := registry.Select([]string{"golem", "imaginary"}); err == nil {
		t.Fatalf("expected error for unknown key in selection")
	}
}

func TestRegistryByPeriod(t *testing.T) {
	registry := scrape.NewRegistry(nil)

	weekly := registry.ByPeriod("weekly")
	if len(weekly) != 2 || weekly[0].Info().Key != "cine-paz" || weekly[1].Info().Key != "golem" {
		t.Fatalf("unexpected weekly adapters %v", weekly)
	}

	monthly := registry.ByPeriod("monthly")
	if len(monthly) != 1 || monthly[0].Info().Key != "cineteca" {
		t.Fatalf("unexpected monthly adapters %v", monthly)
	}
}
