package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cartelera/internal/catalog"
	"cartelera/internal/enrich/tmdb"
	"cartelera/internal/identity"
	"cartelera/internal/logging"
	"cartelera/internal/textutil"
)

// ErrNoMetadata indicates that no metadata could be found for a film. The
// absence is cached so subsequent runs skip the fetch until a backfill.
var ErrNoMetadata = errors.New("no metadata available")

// Enrichment is the result of enriching one film.
type Enrichment struct {
	Metadata   catalog.Metadata
	ShortURL   string
	CatalogURL string
}

// Enricher fetches film metadata, consulting the identity cache snapshot
// before touching the network.
type Enricher struct {
	pages           PageFetcher
	fetcher         tmdb.Fetcher
	cache           *identity.Cache
	localizedLang   string
	localizedRegion string
	logger          *slog.Logger
}

// NewEnricher builds an enricher. fetcher may be nil when no TMDB
// credentials are configured; enrichment then carries only the film page
// fields. language is a locale like "es-ES" selecting the localized title.
func NewEnricher(pages PageFetcher, fetcher tmdb.Fetcher, cache *identity.Cache, language string, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = logging.NewNop()
	}
	lang, region := splitLocale(language)
	return &Enricher{
		pages:           pages,
		fetcher:         fetcher,
		cache:           cache,
		localizedLang:   lang,
		localizedRegion: region,
		logger:          logging.NewComponentLogger(logger, "enrich"),
	}
}

// Enrich returns metadata for a film with a resolved identity. A cached
// snapshot is returned without network access; a cached absence returns
// ErrNoMetadata the same way.
func (e *Enricher) Enrich(ctx context.Context, film catalog.Film) (Enrichment, error) {
	if strings.TrimSpace(film.IdentityURL) == "" {
		return Enrichment{}, ErrNoMetadata
	}
	key := textutil.SearchKey(film.Title, film.Year)

	entry, cached := e.cache.Lookup(key)
	if cached {
		if entry.Metadata != nil {
			return Enrichment{
				Metadata:   *entry.Metadata,
				ShortURL:   entry.ShortURL,
				CatalogURL: entry.CatalogURL,
			}, nil
		}
		if entry.MetadataAbsent {
			return Enrichment{}, ErrNoMetadata
		}
	}
	if !cached {
		entry = identity.Entry{Key: key, URL: film.IdentityURL}
	}

	result, err := e.fetch(ctx, film)
	if err != nil {
		return Enrichment{}, err
	}

	if result.Metadata.IsZero() && result.ShortURL == "" && result.CatalogURL == "" {
		entry.MetadataAbsent = true
	} else {
		snapshot := result.Metadata
		entry.Metadata = &snapshot
		entry.ShortURL = result.ShortURL
		entry.CatalogURL = result.CatalogURL
		entry.MetadataAbsent = false
	}
	if err := e.cache.Update(entry); err != nil {
		e.logger.Warn("metadata snapshot not persisted",
			logging.String(logging.FieldFilm, film.Title),
			logging.Error(err))
	}

	if entry.MetadataAbsent {
		return Enrichment{}, ErrNoMetadata
	}
	return result, nil
}

// fetch performs the network half of enrichment: the film page first, then
// the catalog API when the page references a catalog entry.
func (e *Enricher) fetch(ctx context.Context, film catalog.Film) (Enrichment, error) {
	page, err := e.pages.FetchFilmPage(ctx, film.IdentityURL)
	if err != nil {
		return Enrichment{}, fmt.Errorf("fetch film page: %w", err)
	}

	result := Enrichment{
		Metadata: catalog.Metadata{
			Rating:      page.Rating,
			ViewerCount: page.ViewerCount,
		},
		ShortURL:   page.ShortURL,
		CatalogURL: page.CatalogURL,
	}

	if e.fetcher == nil || page.CatalogURL == "" {
		return result, nil
	}
	mediaType, id, ok := tmdb.ParseURL(page.CatalogURL)
	if !ok {
		e.logger.Warn("unparseable catalog url",
			logging.String(logging.FieldFilm, film.Title),
			logging.String("url", page.CatalogURL))
		return result, nil
	}

	details, err := e.fetcher.Details(ctx, mediaType, id)
	if err != nil {
		// Page fields are still worth keeping; the catalog fetch can
		// succeed on a later backfill.
		e.logger.Warn("catalog details fetch failed",
			logging.String(logging.FieldFilm, film.Title),
			logging.Error(err))
		return result, nil
	}

	info := details.Info(mediaType, e.localizedLang, e.localizedRegion)
	result.Metadata.Genres = info.Genres
	result.Metadata.Country = info.Country
	result.Metadata.PrimaryLanguage = info.PrimaryLanguage
	result.Metadata.SpokenLanguages = info.SpokenLanguages
	result.Metadata.RuntimeMinutes = info.RuntimeMinutes
	result.Metadata.TitleOriginal = info.TitleOriginal
	result.Metadata.TitleEN = info.TitleEN
	result.Metadata.TitleLocalized = info.TitleLocalized
	return result, nil
}

// splitLocale separates "es-ES" into language and region codes.
func splitLocale(locale string) (lang, region string) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "es", "ES"
	}
	parts := strings.SplitN(locale, "-", 2)
	lang = strings.ToLower(parts[0])
	if len(parts) == 2 {
		region = strings.ToUpper(parts[1])
	}
	return lang, region
}
