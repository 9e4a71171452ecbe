package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cartelera/internal/archive"
	"cartelera/internal/catalog"
)

// Store manages dataset persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the dataset database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole canonical dataset.
func (s *Store) Load(ctx context.Context) (catalog.Dataset, error) {
	var ds catalog.Dataset

	err := retryOnBusy(ctx, func() error {
		ds = catalog.Dataset{}

		rows, err := s.db.QueryContext(ctx, `
			SELECT id, title, director, year,
			       identity_url, identity_short_url, catalog_url,
			       rating, viewer_count,
			       genres, country, primary_language, spoken_languages,
			       runtime_minutes, title_original, title_en, title_localized
			FROM films ORDER BY title, year`)
		if err != nil {
			return fmt.Errorf("query films: %w", err)
		}
		defer rows.Close()

		ids := []int64{}
		byID := map[int64]int{}
		for rows.Next() {
			var id int64
			var film catalog.Film
			var genres, country, primaryLanguage, spokenLanguages string
			if err := rows.Scan(&id, &film.Title, &film.Director, &film.Year,
				&film.IdentityURL, &film.IdentityShortURL, &film.CatalogURL,
				&film.Rating, &film.ViewerCount,
				&genres, &country, &primaryLanguage, &spokenLanguages,
				&film.RuntimeMinutes, &film.TitleOriginal, &film.TitleEN, &film.TitleLocalized); err != nil {
				return fmt.Errorf("scan film: %w", err)
			}
			if err := decodeLists(&film.Metadata, genres, country, primaryLanguage, spokenLanguages); err != nil {
				return fmt.Errorf("decode film %q lists: %w", film.Title, err)
			}
			ds.Films = append(ds.Films, film)
			byID[id] = len(ds.Films) - 1
			ids = append(ids, id)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate films: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		sessionRows, err := s.db.QueryContext(ctx, `
			SELECT film_id, showtime, location, url_tickets, url_info, version
			FROM sessions ORDER BY showtime, location`)
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		defer sessionRows.Close()

		for sessionRows.Next() {
			var (
				filmID   int64
				showtime string
				session  catalog.Session
			)
			if err := sessionRows.Scan(&filmID, &showtime, &session.Location,
				&session.TicketsURL, &session.InfoURL, &session.Version); err != nil {
				return fmt.Errorf("scan session: %w", err)
			}
			parsed, err := catalog.ParseShowTime(showtime)
			if err != nil {
				return fmt.Errorf("stored showtime: %w", err)
			}
			session.ShowTime = parsed
			pos, ok := byID[filmID]
			if !ok {
				continue
			}
			ds.Films[pos].Sessions = append(ds.Films[pos].Sessions, session)
		}
		return sessionRows.Err()
	})
	if err != nil {
		return catalog.Dataset{}, err
	}
	return ds, nil
}

// Save replaces the whole canonical dataset in one transaction.
func (s *Store) Save(ctx context.Context, ds catalog.Dataset) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin save tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM films"); err != nil {
			return fmt.Errorf("clear films: %w", err)
		}

		filmStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO films (title, director, year,
				identity_url, identity_short_url, catalog_url,
				rating, viewer_count,
				genres, country, primary_language, spoken_languages,
				runtime_minutes, title_original, title_en, title_localized)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare film insert: %w", err)
		}
		defer filmStmt.Close()

		sessionStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO sessions (film_id, showtime, location, url_tickets, url_info, version)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare session insert: %w", err)
		}
		defer sessionStmt.Close()

		for i := range ds.Films {
			film := &ds.Films[i]
			genres, country, primaryLanguage, spokenLanguages, err := encodeLists(&film.Metadata)
			if err != nil {
				return fmt.Errorf("encode film %q lists: %w", film.Title, err)
			}
			res, err := filmStmt.ExecContext(ctx,
				film.Title, film.Director, film.Year,
				film.IdentityURL, film.IdentityShortURL, film.CatalogURL,
				film.Rating, film.ViewerCount,
				genres, country, primaryLanguage, spokenLanguages,
				film.RuntimeMinutes, film.TitleOriginal, film.TitleEN, film.TitleLocalized)
			if err != nil {
				return fmt.Errorf("insert film %q: %w", film.Title, err)
			}
			filmID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("film %q insert id: %w", film.Title, err)
			}
			for _, session := range film.Sessions {
				if _, err := sessionStmt.ExecContext(ctx, filmID,
					session.ShowTime.String(), session.Location,
					session.TicketsURL, session.InfoURL, session.Version); err != nil {
					return fmt.Errorf("insert session for %q: %w", film.Title, err)
				}
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit save: %w", err)
		}
		return nil
	})
}

// AppendArchive stores archived bundles. Re-archiving the same sessions is
// a no-op thanks to the table's uniqueness constraint.
func (s *Store) AppendArchive(ctx context.Context, bundles []archive.Bundle) error {
	if len(bundles) == 0 {
		return nil
	}
	archivedAt := time.Now().UTC().Format(time.RFC3339)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin archive tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO archive_sessions
				(window, title, year, identity_url, showtime, location, url_tickets, url_info, version, archived_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare archive insert: %w", err)
		}
		defer stmt.Close()

		for _, bundle := range bundles {
			for _, film := range bundle.Films {
				for _, session := range film.Sessions {
					if _, err := stmt.ExecContext(ctx,
						bundle.Window, film.Title, film.Year, film.IdentityURL,
						session.ShowTime.String(), session.Location,
						session.TicketsURL, session.InfoURL, session.Version,
						archivedAt); err != nil {
						return fmt.Errorf("insert archived session for %q: %w", film.Title, err)
					}
				}
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit archive: %w", err)
		}
		return nil
	})
}

// ArchivedWindows lists archived month windows with their session counts.
func (s *Store) ArchivedWindows(ctx context.Context) (map[string]int, error) {
	windows := map[string]int{}
	err := retryOnBusy(ctx, func() error {
		rows, err := s.db.QueryContext(ctx,
			"SELECT window, COUNT(1) FROM archive_sessions GROUP BY window")
		if err != nil {
			return fmt.Errorf("query archive windows: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				window string
				count  int
			)
			if err := rows.Scan(&window, &count); err != nil {
				return fmt.Errorf("scan archive window: %w", err)
			}
			windows[window] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return windows, nil
}

func encodeLists(m *catalog.Metadata) (genres, country, primaryLanguage, spokenLanguages string, err error) {
	encode := func(list []string) (string, error) {
		if list == nil {
			list = []string{}
		}
		data, err := json.Marshal(list)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if genres, err = encode(m.Genres); err != nil {
		return "", "", "", "", err
	}
	if country, err = encode(m.Country); err != nil {
		return "", "", "", "", err
	}
	if primaryLanguage, err = encode(m.PrimaryLanguage); err != nil {
		return "", "", "", "", err
	}
	spokenLanguages, err = encode(m.SpokenLanguages)
	return genres, country, primaryLanguage, spokenLanguages, err
}

func decodeLists(m *catalog.Metadata, genres, country, primaryLanguage, spokenLanguages string) error {
	decode := func(raw string, dst *[]string) error {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return err
		}
		// Empty lists stay nil so a save/load round trip is exact.
		if len(list) > 0 {
			*dst = list
		}
		return nil
	}
	if err := decode(genres, &m.Genres); err != nil {
		return err
	}
	if err := decode(country, &m.Country); err != nil {
		return err
	}
	if err := decode(primaryLanguage, &m.PrimaryLanguage); err != nil {
		return err
	}
	return decode(spokenLanguages, &m.SpokenLanguages)
}
