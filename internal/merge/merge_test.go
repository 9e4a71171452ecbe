package merge_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"cartelera/internal/catalog"
	"cartelera/internal/enrich"
	"cartelera/internal/merge"
	"cartelera/internal/testsupport"
)

func TestMergeNewFilmIntoEmptyDataset(t *testing.T) {
	batch := []catalog.Film{
		testsupport.NewFilm("Close-Up", 1990,
			testsupport.NewSession(t, "2026-03-01 10:00", "Cineteca"),
			testsupport.NewSession(t, "2026-03-01 20:00", "Cineteca"),
		),
	}

	result, stats := merge.Merge(context.Background(), catalog.Dataset{}, batch, merge.Options{})

	if len(result.Films) != 1 {
		t.Fatalf("expected 1 film, got %d", len(result.Films))
	}
	if got := len(result.Films[0].Sessions); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}
	if stats.FilmsCreated != 1 || stats.SessionsAdded != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	batch := []catalog.Film{
		testsupport.NewFilm("Close-Up", 1990,
			testsupport.NewSession(t, "2026-03-01 10:00", "Cineteca"),
			testsupport.NewSession(t, "2026-03-01 20:00", "Cineteca"),
		),
		testsupport.NewFilm("Pickpocket", 1959,
			testsupport.NewSession(t, "2026-03-02 18:30", "Golem"),
		),
	}

	once, _ := merge.Merge(context.Background(), catalog.Dataset{}, batch, merge.Options{})
	twice, stats := merge.Merge(context.Background(), once, batch, merge.Options{})

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merging the same batch twice changed the dataset:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if stats.FilmsCreated != 0 || stats.FilmsUpdated != 0 || stats.SessionsAdded != 0 {
		t.Fatalf("second merge reported changes: %+v", stats)
	}
}

func TestMergeFillsTicketURLWithoutRegression(t *testing.T) {
	session := testsupport.NewSession(t, "2026-03-05 19:00", "Sala 1")
	existing := catalog.Dataset{Films: []catalog.Film{
		testsupport.NewFilm("Anatomy of a Fall", 2023, session),
	}}

	withURL := session
	withURL.TicketsURL = "https://tickets.example/123"
	batch := []catalog.Film{testsupport.NewFilm("Anatomy of a Fall", 2023, withURL)}

	result, stats := merge.Merge(context.Background(), existing, batch, merge.Options{})

	if got := result.Films[0].Sessions[0].TicketsURL; got != "https://tickets.example/123" {
		t.Fatalf("ticket url not filled, got %q", got)
	}
	if stats.SessionsFilled != 1 || stats.SessionsAdded != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// A later pass with an empty URL must not erase the value.
	again, _ := merge.Merge(context.Background(), result, []catalog.Film{
		testsupport.NewFilm("Anatomy of a Fall", 2023, session),
	}, merge.Options{})
	if got := again.Films[0].Sessions[0].TicketsURL; got != "https://tickets.example/123" {
		t.Fatalf("ticket url regressed to %q", got)
	}
}

func TestMergeKeepsExistingScalarsOverIncoming(t *testing.T) {
	existing := catalog.Dataset{Films: []catalog.Film{{
		Title:    "El Sur",
		Director: "Victor Erice",
		Year:     1983,
		Sessions: []catalog.Session{testsupport.NewSession(t, "2026-04-01 17:00", "Golem")},
	}}}

	batch := []catalog.Film{{
		Title:    "El Sur",
		Director: "V. Erice",
		Year:     1983,
		Sessions: []catalog.Session{testsupport.NewSession(t, "2026-04-02 17:00", "Golem")},
	}}

	result, stats := merge.Merge(context.Background(), existing, batch, merge.Options{})

	if got := result.Films[0].Director; got != "Victor Erice" {
		t.Fatalf("director overwritten, got %q", got)
	}
	if stats.ScalarConflicts != 1 {
		t.Fatalf("expected 1 scalar conflict, got %d", stats.ScalarConflicts)
	}
	if got := len(result.Films[0].Sessions); got != 2 {
		t.Fatalf("expected 2 sessions after union, got %d", got)
	}
}

func TestMergeFillsEmptyScalars(t *testing.T) {
	existing := catalog.Dataset{Films: []catalog.Film{
		testsupport.NewFilm("Stalker", 0, testsupport.NewSession(t, "2026-05-01 21:00", "Cineteca")),
	}}
	batch := []catalog.Film{{
		Title:    "Stalker",
		Director: "Andrei Tarkovsky",
		Sessions: nil,
	}}

	result, _ := merge.Merge(context.Background(), existing, batch, merge.Options{})
	if got := result.Films[0].Director; got != "Andrei Tarkovsky" {
		t.Fatalf("director not filled, got %q", got)
	}
}

func TestMergeIdentityAdoptedOnceAndDefended(t *testing.T) {
	existing := catalog.Dataset{Films: []catalog.Film{
		testsupport.NewFilm("Persona", 1966, testsupport.NewSession(t, "2026-03-10 20:00", "Golem")),
	}}

	first := testsupport.NewFilm("Persona", 1966)
	first.IdentityURL = "https://letterboxd.com/film/persona/"
	result, _ := merge.Merge(context.Background(), existing, []catalog.Film{first}, merge.Options{})

	if got := result.Films[0].IdentityURL; got != first.IdentityURL {
		t.Fatalf("identity not adopted, got %q", got)
	}

	second := testsupport.NewFilm("Persona", 1966)
	second.IdentityURL = "https://letterboxd.com/film/persona-1966/"
	result, stats := merge.Merge(context.Background(), result, []catalog.Film{second}, merge.Options{})

	if got := result.Films[0].IdentityURL; got != first.IdentityURL {
		t.Fatalf("identity silently replaced with %q", got)
	}
	if stats.IdentityConflicts != 1 {
		t.Fatalf("expected 1 identity conflict, got %d", stats.IdentityConflicts)
	}
}

func TestMergeAuthoritativeOverridesIdentityAndFields(t *testing.T) {
	film := testsupport.NewFilm("Vertigo", 1958, testsupport.NewSession(t, "2026-03-12 19:30", "Cine Paz"))
	film.IdentityURL = "https://letterboxd.com/film/wrong-match/"
	film.Director = "Wrong Director"
	existing := catalog.Dataset{Films: []catalog.Film{film}}

	correction := testsupport.NewFilm("Vertigo", 1958)
	correction.IdentityURL = "https://letterboxd.com/film/vertigo/"
	correction.Director = "Alfred Hitchcock"
	correction.Authoritative = true

	result, _ := merge.Merge(context.Background(), existing, []catalog.Film{correction}, merge.Options{})

	got := result.Films[0]
	if got.IdentityURL != correction.IdentityURL {
		t.Fatalf("authoritative identity not applied, got %q", got.IdentityURL)
	}
	if got.Director != "Alfred Hitchcock" {
		t.Fatalf("authoritative director not applied, got %q", got.Director)
	}
}

func TestMergeBatchInternalDuplicateFirstSeenWins(t *testing.T) {
	a := testsupport.NewFilm("Ran", 1985, testsupport.NewSession(t, "2026-03-15 17:00", "Cineteca"))
	a.Director = "Akira Kurosawa"
	b := testsupport.NewFilm("Ran", 1985, testsupport.NewSession(t, "2026-03-15 21:00", "Golem"))
	b.Director = "A. Kurosawa"

	result, _ := merge.Merge(context.Background(), catalog.Dataset{}, []catalog.Film{a, b}, merge.Options{})

	if len(result.Films) != 1 {
		t.Fatalf("batch duplicate forked %d films", len(result.Films))
	}
	if got := result.Films[0].Director; got != "Akira Kurosawa" {
		t.Fatalf("first-seen director lost, got %q", got)
	}
	if got := len(result.Films[0].Sessions); got != 2 {
		t.Fatalf("expected both sessions kept, got %d", got)
	}
}

func TestMergeMatchesIdentityBatchAgainstTitleKeyedFilm(t *testing.T) {
	existing := catalog.Dataset{Films: []catalog.Film{
		testsupport.NewFilm("La Haine", 1995, testsupport.NewSession(t, "2026-03-20 22:00", "Cine Paz")),
	}}

	incoming := testsupport.NewFilm("La Haine", 1995, testsupport.NewSession(t, "2026-03-21 22:00", "Cine Paz"))
	incoming.IdentityURL = "https://letterboxd.com/film/la-haine/"

	result, _ := merge.Merge(context.Background(), existing, []catalog.Film{incoming}, merge.Options{})
	if len(result.Films) != 1 {
		t.Fatalf("identity-keyed record forked a duplicate film, got %d films", len(result.Films))
	}
}

func TestMergeDoesNotDropExistingSessions(t *testing.T) {
	existing := catalog.Dataset{Films: []catalog.Film{
		testsupport.NewFilm("Old Joy", 2006,
			testsupport.NewSession(t, "2026-01-01 18:00", "Cineteca"),
			testsupport.NewSession(t, "2026-01-02 18:00", "Cineteca"),
		),
	}}

	batch := []catalog.Film{
		testsupport.NewFilm("Old Joy", 2006, testsupport.NewSession(t, "2026-01-03 18:00", "Cineteca")),
	}

	result, _ := merge.Merge(context.Background(), existing, batch, merge.Options{})
	if got := len(result.Films[0].Sessions); got != 3 {
		t.Fatalf("expected 3 sessions, got %d", got)
	}

	seen := map[string]bool{}
	for _, s := range result.Films[0].Sessions {
		if seen[s.Key()] {
			t.Fatalf("duplicate session key %q", s.Key())
		}
		seen[s.Key()] = true
	}
}

type stubEnricher struct {
	enrichment enrich.Enrichment
	err        error
	calls      int
}

func (s *stubEnricher) Enrich(_ context.Context, _ catalog.Film) (enrich.Enrichment, error) {
	s.calls++
	return s.enrichment, s.err
}

func TestMergeEnrichesResolvedFilmsLackingMetadata(t *testing.T) {
	resolved := testsupport.NewFilm("Aftersun", 2022, testsupport.NewSession(t, "2026-03-25 20:00", "Golem"))
	resolved.IdentityURL = "https://letterboxd.com/film/aftersun/"
	unresolved := testsupport.NewFilm("Unknown Short", 0, testsupport.NewSession(t, "2026-03-25 18:00", "Cineteca"))

	enricher := &stubEnricher{enrichment: enrich.Enrichment{
		Metadata: catalog.Metadata{Rating: 4.12, Genres: []string{"Drama"}},
		ShortURL: "https://boxd.it/abc",
	}}

	result, stats := merge.Merge(context.Background(), catalog.Dataset{},
		[]catalog.Film{resolved, unresolved}, merge.Options{Enricher: enricher})

	if enricher.calls != 1 {
		t.Fatalf("expected 1 enrich call, got %d", enricher.calls)
	}
	if stats.Enriched != 1 {
		t.Fatalf("expected 1 enriched film, got %d", stats.Enriched)
	}
	for _, film := range result.Films {
		if film.Title != "Aftersun" {
			continue
		}
		if film.Rating != 4.12 || film.IdentityShortURL != "https://boxd.it/abc" {
			t.Fatalf("enrichment not applied: %+v", film)
		}
	}
}

func TestMergeEnrichmentMissIsNotFatal(t *testing.T) {
	film := testsupport.NewFilm("Obscure Title", 0, testsupport.NewSession(t, "2026-03-26 20:00", "Cineteca"))
	film.IdentityURL = "https://letterboxd.com/film/obscure/"

	enricher := &stubEnricher{err: enrich.ErrNoMetadata}
	result, stats := merge.Merge(context.Background(), catalog.Dataset{},
		[]catalog.Film{film}, merge.Options{Enricher: enricher})

	if stats.EnrichmentMisses != 1 {
		t.Fatalf("expected 1 enrichment miss, got %d", stats.EnrichmentMisses)
	}
	if len(result.Films) != 1 {
		t.Fatalf("film dropped on enrichment miss")
	}
}

func TestMergeEnrichmentFailureIsNotFatal(t *testing.T) {
	film := testsupport.NewFilm("Flaky Title", 0, testsupport.NewSession(t, "2026-03-27 20:00", "Cineteca"))
	film.IdentityURL = "https://letterboxd.com/film/flaky/"

	enricher := &stubEnricher{err: errors.New("connection reset")}
	result, stats := merge.Merge(context.Background(), catalog.Dataset{},
		[]catalog.Film{film}, merge.Options{Enricher: enricher})

	if stats.EnrichmentMisses != 1 {
		t.Fatalf("expected 1 enrichment miss, got %d", stats.EnrichmentMisses)
	}
	if len(result.Films) != 1 {
		t.Fatalf("film dropped on enrichment failure")
	}
}

func TestMergeBackfillRefreshesMetadata(t *testing.T) {
	film := testsupport.NewFilm("Aftersun", 2022, testsupport.NewSession(t, "2026-03-25 20:00", "Golem"))
	film.IdentityURL = "https://letterboxd.com/film/aftersun/"
	film.Rating = 4.0
	existing := catalog.Dataset{Films: []catalog.Film{film}}

	enricher := &stubEnricher{enrichment: enrich.Enrichment{
		Metadata: catalog.Metadata{Rating: 4.2},
	}}

	result, _ := merge.Merge(context.Background(), existing, nil,
		merge.Options{Enricher: enricher, Backfill: true})

	if got := result.Films[0].Rating; got != 4.2 {
		t.Fatalf("backfill did not refresh rating, got %v", got)
	}
}
