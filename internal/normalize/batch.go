package normalize

import (
	"log/slog"
	"strings"

	"cartelera/internal/catalog"
	"cartelera/internal/logging"
	"cartelera/internal/scrape"
)

// BuildFilms turns one scrape batch into film records with deduplicated
// session lists. Records are grouped by the theater film page URL (falling
// back to theater key plus title) so repeated scrapes of overlapping days
// collapse before the merge. Records with unparseable showtimes are dropped
// with a warning and never abort the batch.
func BuildFilms(records []scrape.RawScreeningRecord, logger *slog.Logger) []catalog.Film {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "normalize")

	type entry struct {
		film     catalog.Film
		sessions map[string]struct{}
	}
	films := make(map[string]*entry)
	var order []string

	for _, rec := range records {
		title := strings.TrimSpace(rec.Title)
		if title == "" {
			logger.Warn("record without title dropped",
				logging.String(logging.FieldTheater, rec.Theater))
			continue
		}

		session, err := Session(rec)
		if err != nil {
			logger.Warn("record dropped",
				logging.String(logging.FieldTheater, rec.Theater),
				logging.String(logging.FieldFilm, title),
				logging.Error(err))
			continue
		}

		key := strings.TrimSpace(rec.FilmURL)
		if key == "" {
			key = rec.Theater + "|" + title
		}

		ent, ok := films[key]
		if !ok {
			ent = &entry{
				film: catalog.Film{
					Title:    title,
					Director: strings.TrimSpace(rec.Director),
					Year:     Year(rec.YearText),
				},
				sessions: make(map[string]struct{}),
			}
			films[key] = ent
			order = append(order, key)
		}

		// Fill film fields the first record happened to miss.
		if ent.film.Director == "" {
			ent.film.Director = strings.TrimSpace(rec.Director)
		}
		if ent.film.Year == 0 {
			ent.film.Year = Year(rec.YearText)
		}

		if _, dup := ent.sessions[session.Key()]; dup {
			continue
		}
		ent.sessions[session.Key()] = struct{}{}
		ent.film.Sessions = append(ent.film.Sessions, session)
	}

	out := make([]catalog.Film, 0, len(order))
	for _, key := range order {
		film := films[key].film
		catalog.SortSessions(film.Sessions)
		out = append(out, film)
	}
	return out
}
