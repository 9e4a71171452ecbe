package enrich_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cartelera/internal/catalog"
	"cartelera/internal/enrich"
	"cartelera/internal/enrich/tmdb"
	"cartelera/internal/identity"
)

type stubPages struct {
	page  *enrich.FilmPage
	err   error
	calls int
}

func (s *stubPages) FetchFilmPage(_ context.Context, _ string) (*enrich.FilmPage, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

type stubFetcher struct {
	details *tmdb.Details
	err     error
	calls   int
}

func (s *stubFetcher) Details(_ context.Context, _ string, _ int64) (*tmdb.Details, error) {
	s.calls++
	return s.details, s.err
}

func newTestCache(t *testing.T) *identity.Cache {
	t.Helper()
	return identity.NewCache(filepath.Join(t.TempDir(), "cache.json"), nil)
}

func resolvedFilm() catalog.Film {
	return catalog.Film{
		Title:       "Anatomy of a Fall",
		Year:        2023,
		IdentityURL: "https://letterboxd.com/film/anatomy-of-a-fall/",
	}
}

func TestEnrichCombinesPageAndCatalogFields(t *testing.T) {
	pages := &stubPages{page: &enrich.FilmPage{
		Rating:     4.53,
		ShortURL:   "https://boxd.it/abc12",
		CatalogURL: "https://www.themoviedb.org/movie/915935/",
	}}
	fetcher := &stubFetcher{details: &tmdb.Details{
		Title:            "Anatomy of a Fall",
		OriginalTitle:    "Anatomie d'une chute",
		OriginalLanguage: "fr",
		Runtime:          151,
		Genres:           []tmdb.Named{{Name: "Drama"}},
	}}

	enricher := enrich.NewEnricher(pages, fetcher, newTestCache(t), "es-ES", nil)
	result, err := enricher.Enrich(context.Background(), resolvedFilm())
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if result.Metadata.Rating != 4.53 || result.Metadata.RuntimeMinutes != 151 {
		t.Fatalf("unexpected metadata %+v", result.Metadata)
	}
	if result.ShortURL != "https://boxd.it/abc12" {
		t.Fatalf("unexpected short url %q", result.ShortURL)
	}
	if result.Metadata.TitleOriginal != "Anatomie d'une chute" {
		t.Fatalf("unexpected original title %q", result.Metadata.TitleOriginal)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one catalog fetch, got %d", fetcher.calls)
	}
}

func TestEnrichUsesCachedSnapshot(t *testing.T) {
	pages := &stubPages{page: &enrich.FilmPage{Rating: 4.5}}
	enricher := enrich.NewEnricher(pages, nil, newTestCache(t), "es-ES", nil)

	film := resolvedFilm()
	if _, err := enricher.Enrich(context.Background(), film); err != nil {
		t.Fatalf("first enrich: %v", err)
	}
	if _, err := enricher.Enrich(context.Background(), film); err != nil {
		t.Fatalf("second enrich: %v", err)
	}
	if pages.calls != 1 {
		t.Fatalf("snapshot not reused, %d page fetches", pages.calls)
	}
}

func TestEnrichCachesAbsence(t *testing.T) {
	pages := &stubPages{page: &enrich.FilmPage{}}
	enricher := enrich.NewEnricher(pages, nil, newTestCache(t), "es-ES", nil)

	film := resolvedFilm()
	for i := 0; i < 2; i++ {
		if _, err := enricher.Enrich(context.Background(), film); !errors.Is(err, enrich.ErrNoMetadata) {
			t.Fatalf("expected ErrNoMetadata, got %v", err)
		}
	}
	if pages.calls != 1 {
		t.Fatalf("absence not cached, %d page fetches", pages.calls)
	}
}

func TestEnrichWithoutIdentityIsNoMetadata(t *testing.T) {
	pages := &stubPages{}
	enricher := enrich.NewEnricher(pages, nil, newTestCache(t), "es-ES", nil)

	_, err := enricher.Enrich(context.Background(), catalog.Film{Title: "Unmatched"})
	if !errors.Is(err, enrich.ErrNoMetadata) {
		t.Fatalf("expected ErrNoMetadata, got %v", err)
	}
	if pages.calls != 0 {
		t.Fatalf("page fetched without identity")
	}
}

func TestEnrichPageFailureIsAnError(t *testing.T) {
	pages := &stubPages{err: errors.New("boom")}
	enricher := enrich.NewEnricher(pages, nil, newTestCache(t), "es-ES", nil)

	_, err := enricher.Enrich(context.Background(), resolvedFilm())
	if err == nil || errors.Is(err, enrich.ErrNoMetadata) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestEnrichCatalogFailureKeepsPageFields(t *testing.T) {
	pages := &stubPages{page: &enrich.FilmPage{
		Rating:     4.1,
		CatalogURL: "https://www.themoviedb.org/movie/1/",
	}}
	fetcher := &stubFetcher{err: errors.New("rate limited")}
	enricher := enrich.NewEnricher(pages, fetcher, newTestCache(t), "es-ES", nil)

	result, err := enricher.Enrich(context.Background(), resolvedFilm())
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if result.Metadata.Rating != 4.1 || result.CatalogURL == "" {
		t.Fatalf("page fields lost on catalog failure: %+v", result)
	}
}
