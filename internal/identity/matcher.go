package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"cartelera/internal/logging"
	"cartelera/internal/textutil"
)

// minTitleSimilarity is the token overlap a search result must reach
// against the queried title before the match is accepted.
const minTitleSimilarity = 0.5

// Matcher resolves film identities through the cache-fronted search client.
type Matcher struct {
	searcher Searcher
	cache    *Cache
	logger   *slog.Logger
}

// NewMatcher builds a matcher over a search client and a shared cache.
func NewMatcher(searcher Searcher, cache *Cache, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Matcher{
		searcher: searcher,
		cache:    cache,
		logger:   logging.NewComponentLogger(logger, "matcher"),
	}
}

// Resolve returns the canonical identity for a scraped title, consulting
// the cache before any external lookup. A cache miss triggers one search;
// the result, including an explicit no-match, is cached before returning.
// Lookup failures degrade to ErrNoMatch and are cached as negative so they
// are not retried every run.
func (m *Matcher) Resolve(ctx context.Context, title string, year int, director string) (Identity, error) {
	key := textutil.SearchKey(title, year)

	entry, err := m.cache.Resolve(key, func() Entry {
		return m.lookup(ctx, title, year, director)
	})
	if err != nil {
		m.logger.Warn("identity cache persist failed",
			logging.String(logging.FieldFilm, title),
			logging.Error(err))
	}

	if entry.NoMatch {
		return Identity{}, ErrNoMatch
	}
	return entry.Identity(), nil
}

// lookup performs the external search, trying progressively looser query
// strategies: title with year filter, title with director filter, bare
// title. The first verified result wins.
func (m *Matcher) lookup(ctx context.Context, title string, year int, director string) Entry {
	for _, query := range m.queries(title, year, director) {
		result, err := m.searcher.Search(ctx, query)
		if err != nil {
			m.logger.Warn("film search failed",
				logging.String(logging.FieldFilm, title),
				logging.String("query", query),
				logging.Error(err))
			return Entry{NoMatch: true}
		}
		if result == nil || result.URL == "" {
			continue
		}
		if sim := textutil.TokenSimilarity(title, result.Title); sim < minTitleSimilarity {
			m.logger.Debug("search result rejected",
				logging.String(logging.FieldFilm, title),
				logging.String("candidate", result.Title),
				logging.Float64("similarity", sim))
			continue
		}
		m.logger.Debug("identity resolved",
			logging.String(logging.FieldFilm, title),
			logging.String("url", result.URL))
		return Entry{URL: result.URL}
	}

	m.logger.Info("no identity match",
		logging.String(logging.FieldFilm, title),
		logging.Int("year", year))
	return Entry{NoMatch: true}
}

// queries builds the search strategies in decreasing strictness.
func (m *Matcher) queries(title string, year int, director string) []string {
	cleaned := strings.Join(strings.Fields(strings.NewReplacer(".", " ", "/", "").Replace(title)), " ")

	var queries []string
	if year > 0 {
		queries = append(queries, cleaned+" year:"+strconv.Itoa(year))
	}
	for _, name := range strings.Split(director, ",") {
		if slug := textutil.SlugifyName(name); slug != "" {
			queries = append(queries, fmt.Sprintf("%s director:%s", cleaned, slug))
		}
	}
	return append(queries, cleaned)
}
