package merge

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"cartelera/internal/catalog"
	"cartelera/internal/enrich"
	"cartelera/internal/logging"
	"cartelera/internal/textutil"
)

// Enricher is the metadata source invoked for films that still lack
// metadata after reconciliation. enrich.Enricher satisfies it.
type Enricher interface {
	Enrich(ctx context.Context, film catalog.Film) (enrich.Enrichment, error)
}

// Options controls a merge run.
type Options struct {
	// Backfill forces metadata to be re-fetched for every film with a
	// resolved identity, not only those lacking metadata.
	Backfill bool
	// Enricher may be nil, in which case the enrichment pass is skipped.
	Enricher Enricher
	Logger   *slog.Logger
}

// Stats summarizes what a merge run changed.
type Stats struct {
	FilmsCreated      int
	FilmsUpdated      int
	SessionsAdded     int
	SessionsFilled    int
	IdentityConflicts int
	ScalarConflicts   int
	Enriched          int
	EnrichmentMisses  int
}

// Merge reconciles batch into dataset and returns the updated dataset. The
// input dataset is not mutated. Films are matched by identity reference
// when resolved, by normalized (title, year) otherwise; a film indexed
// under its identity stays reachable through its title key so unresolved
// re-scrapes of the same film do not fork a duplicate entry.
func Merge(ctx context.Context, dataset catalog.Dataset, batch []catalog.Film, opts Options) (catalog.Dataset, Stats) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "merge")

	result := dataset.Clone()
	stats := Stats{}

	index := make(map[string]int, len(result.Films))
	for i := range result.Films {
		indexFilm(index, &result.Films[i], i)
	}

	for _, incoming := range batch {
		pos, found := lookupFilm(index, &incoming)
		if !found {
			film := incoming.Clone()
			catalog.SortSessions(film.Sessions)
			result.Films = append(result.Films, film)
			pos = len(result.Films) - 1
			indexFilm(index, &result.Films[pos], pos)
			stats.FilmsCreated++
			stats.SessionsAdded += len(film.Sessions)
			continue
		}

		changed := mergeFilm(&result.Films[pos], incoming, &stats, logger)
		indexFilm(index, &result.Films[pos], pos)
		if changed {
			stats.FilmsUpdated++
		}
	}

	if opts.Enricher != nil {
		enrichFilms(ctx, result.Films, opts, &stats, logger)
	}

	result.Sort()
	logger.Info("merge complete",
		logging.Int("films_created", stats.FilmsCreated),
		logging.Int("films_updated", stats.FilmsUpdated),
		logging.Int("sessions_added", stats.SessionsAdded),
		logging.Int("identity_conflicts", stats.IdentityConflicts))
	return result, stats
}

// indexFilm registers a film under its merge key and, when it carries an
// identity reference, under its title fallback key as well.
func indexFilm(index map[string]int, film *catalog.Film, pos int) {
	index[film.Key(textutil.SearchKey)] = pos
	if film.IdentityURL != "" {
		key := textutil.SearchKey(film.Title, film.Year)
		if _, taken := index[key]; !taken {
			index[key] = pos
		}
	}
}

// lookupFilm finds the dataset entry an incoming film belongs to, trying
// its identity key first and its title key second.
func lookupFilm(index map[string]int, film *catalog.Film) (int, bool) {
	if pos, ok := index[film.Key(textutil.SearchKey)]; ok {
		return pos, true
	}
	if film.IdentityURL != "" {
		pos, ok := index[textutil.SearchKey(film.Title, film.Year)]
		return pos, ok
	}
	return 0, false
}

// mergeFilm folds one incoming record into an existing film and reports
// whether anything changed.
func mergeFilm(existing *catalog.Film, incoming catalog.Film, stats *Stats, logger *slog.Logger) bool {
	changed := mergeSessions(existing, incoming.Sessions, incoming.Authoritative, stats)

	if mergeScalars(existing, incoming, stats, logger) {
		changed = true
	}
	if mergeIdentity(existing, incoming, stats, logger) {
		changed = true
	}
	if mergeMetadata(&existing.Metadata, incoming.Metadata, incoming.Authoritative) {
		changed = true
	}
	return changed
}

// mergeSessions unions incoming sessions into the existing list. Duplicate
// (showtime, location) keys fill only the fields the existing session left
// empty unless the incoming record is authoritative.
func mergeSessions(existing *catalog.Film, incoming []catalog.Session, authoritative bool, stats *Stats) bool {
	idx := existing.SessionIndex()
	changed := false

	for _, session := range incoming {
		key := session.Key()
		pos, dup := idx[key]
		if !dup {
			existing.Sessions = append(existing.Sessions, session)
			idx[key] = len(existing.Sessions) - 1
			stats.SessionsAdded++
			changed = true
			continue
		}
		if fillSession(&existing.Sessions[pos], session, authoritative) {
			stats.SessionsFilled++
			changed = true
		}
	}

	if changed {
		catalog.SortSessions(existing.Sessions)
	}
	return changed
}

// fillSession applies the anti-regression rule to one duplicate session.
func fillSession(existing *catalog.Session, incoming catalog.Session, authoritative bool) bool {
	changed := false
	changed = fillString(&existing.TicketsURL, incoming.TicketsURL, authoritative) || changed
	changed = fillString(&existing.InfoURL, incoming.InfoURL, authoritative) || changed

	if incoming.Version != "" && (existing.Version == "" || (authoritative && existing.Version != incoming.Version)) {
		existing.Version = incoming.Version
		changed = true
	}
	return changed
}

// mergeScalars fills empty title, director and year fields. Existing
// non-empty values survive re-scrapes; a differing non-empty incoming
// value is discarded with a log line unless the record is authoritative.
func mergeScalars(existing *catalog.Film, incoming catalog.Film, stats *Stats, logger *slog.Logger) bool {
	changed := false

	scalars := []struct {
		name     string
		existing *string
		incoming string
	}{
		{"title", &existing.Title, incoming.Title},
		{"director", &existing.Director, incoming.Director},
	}
	for _, s := range scalars {
		if fillString(s.existing, s.incoming, incoming.Authoritative) {
			changed = true
			continue
		}
		if s.incoming != "" && *s.existing != s.incoming {
			stats.ScalarConflicts++
			logger.Debug("scalar conflict, keeping existing",
				logging.String(logging.FieldFilm, existing.Title),
				logging.String("field", s.name),
				logging.String("discarded", s.incoming))
		}
	}

	switch {
	case incoming.Year != 0 && existing.Year == 0:
		existing.Year = incoming.Year
		changed = true
	case incoming.Authoritative && incoming.Year != 0 && existing.Year != incoming.Year:
		existing.Year = incoming.Year
		changed = true
	case incoming.Year != 0 && existing.Year != incoming.Year:
		stats.ScalarConflicts++
		logger.Debug("scalar conflict, keeping existing",
			logging.String(logging.FieldFilm, existing.Title),
			logging.String("field", "year"),
			logging.String("discarded", strconv.Itoa(incoming.Year)))
	}
	return changed
}

// mergeIdentity adopts an identity reference onto a film that lacks one. A
// different incoming reference never replaces an established one unless the
// record is authoritative; the conflict is logged either way.
func mergeIdentity(existing *catalog.Film, incoming catalog.Film, stats *Stats, logger *slog.Logger) bool {
	changed := false

	switch {
	case incoming.IdentityURL == "" || existing.IdentityURL == incoming.IdentityURL:
		// Nothing to reconcile.
	case existing.IdentityURL == "":
		existing.IdentityURL = incoming.IdentityURL
		changed = true
	case incoming.Authoritative:
		stats.IdentityConflicts++
		logger.Info("identity reference overridden",
			logging.String(logging.FieldFilm, existing.Title),
			logging.String("previous", existing.IdentityURL),
			logging.String("replacement", incoming.IdentityURL))
		existing.IdentityURL = incoming.IdentityURL
		existing.IdentityShortURL = ""
		existing.CatalogURL = ""
		changed = true
	default:
		stats.IdentityConflicts++
		logger.Warn("identity reference conflict, keeping existing",
			logging.String(logging.FieldFilm, existing.Title),
			logging.String("existing", existing.IdentityURL),
			logging.String("incoming", incoming.IdentityURL))
	}

	changed = fillString(&existing.IdentityShortURL, incoming.IdentityShortURL, incoming.Authoritative) || changed
	changed = fillString(&existing.CatalogURL, incoming.CatalogURL, incoming.Authoritative) || changed
	return changed
}

// mergeMetadata fills metadata fields that are still empty. Authoritative
// records overwrite with any non-empty value they carry.
func mergeMetadata(existing *catalog.Metadata, incoming catalog.Metadata, authoritative bool) bool {
	changed := false

	if incoming.Rating != 0 && (existing.Rating == 0 || authoritative) && existing.Rating != incoming.Rating {
		existing.Rating = incoming.Rating
		changed = true
	}
	if incoming.ViewerCount != 0 && (existing.ViewerCount == 0 || authoritative) && existing.ViewerCount != incoming.ViewerCount {
		existing.ViewerCount = incoming.ViewerCount
		changed = true
	}
	if incoming.RuntimeMinutes != 0 && (existing.RuntimeMinutes == 0 || authoritative) && existing.RuntimeMinutes != incoming.RuntimeMinutes {
		existing.RuntimeMinutes = incoming.RuntimeMinutes
		changed = true
	}

	changed = fillString(&existing.TitleOriginal, incoming.TitleOriginal, authoritative) || changed
	changed = fillString(&existing.TitleEN, incoming.TitleEN, authoritative) || changed
	changed = fillString(&existing.TitleLocalized, incoming.TitleLocalized, authoritative) || changed

	changed = fillStrings(&existing.Genres, incoming.Genres, authoritative) || changed
	changed = fillStrings(&existing.Country, incoming.Country, authoritative) || changed
	changed = fillStrings(&existing.PrimaryLanguage, incoming.PrimaryLanguage, authoritative) || changed
	changed = fillStrings(&existing.SpokenLanguages, incoming.SpokenLanguages, authoritative) || changed
	return changed
}

// enrichFilms runs the metadata pass over films that still lack metadata,
// or over every resolved film when backfilling.
func enrichFilms(ctx context.Context, films []catalog.Film, opts Options, stats *Stats, logger *slog.Logger) {
	for i := range films {
		film := &films[i]
		if film.IdentityURL == "" {
			continue
		}
		if !opts.Backfill && !film.Metadata.IsZero() {
			continue
		}

		enrichment, err := opts.Enricher.Enrich(ctx, *film)
		if err != nil {
			stats.EnrichmentMisses++
			if errors.Is(err, enrich.ErrNoMetadata) {
				logger.Debug("no metadata for film",
					logging.String(logging.FieldFilm, film.Title))
			} else {
				logger.Warn("enrichment failed",
					logging.String(logging.FieldFilm, film.Title),
					logging.Error(err))
			}
			continue
		}

		applyEnrichment(film, enrichment, opts.Backfill)
		stats.Enriched++
	}
}

// applyEnrichment attaches fetched metadata. A backfill refreshes values
// that may drift externally (rating, viewer count); otherwise only empty
// fields are populated.
func applyEnrichment(film *catalog.Film, enrichment enrich.Enrichment, backfill bool) {
	mergeMetadata(&film.Metadata, enrichment.Metadata, backfill)
	fillString(&film.IdentityShortURL, enrichment.ShortURL, backfill)
	fillString(&film.CatalogURL, enrichment.CatalogURL, backfill)
}

// fillString sets dst from src when dst is empty, or whenever src is
// non-empty and overwrite is set. Reports whether dst changed.
func fillString(dst *string, src string, overwrite bool) bool {
	if src == "" || *dst == src {
		return false
	}
	if *dst == "" || overwrite {
		*dst = src
		return true
	}
	return false
}

// fillStrings applies the same rule to list fields, treating them as one
// value rather than merging element-wise.
func fillStrings(dst *[]string, src []string, overwrite bool) bool {
	if len(src) == 0 {
		return false
	}
	if len(*dst) == 0 || overwrite {
		if equalStrings(*dst, src) {
			return false
		}
		*dst = append([]string(nil), src...)
		return true
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
