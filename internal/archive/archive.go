package archive

import (
	"log/slog"
	"sort"

	"cartelera/internal/catalog"
	"cartelera/internal/logging"
)

// Bundle holds the sessions archived from one month window.
type Bundle struct {
	// Window labels the month the bundled sessions fall into, e.g. "2026-03".
	Window string        `json:"window"`
	Films  []BundledFilm `json:"films"`
}

// BundledFilm pairs a film reference with its archived sessions.
type BundledFilm struct {
	Title       string            `json:"title"`
	Year        int               `json:"year,omitempty"`
	IdentityURL string            `json:"identity_url,omitempty"`
	Sessions    []catalog.Session `json:"sessions"`
}

// Result is the partition produced by one archive pass.
type Result struct {
	Live             catalog.Dataset
	Bundles          []Bundle
	SessionsArchived int
}

// Options controls an archive pass.
type Options struct {
	// DryRun computes the partition without touching the live dataset;
	// Result.Live is then identical to the input.
	DryRun bool
	Logger *slog.Logger
}

// Archive partitions the dataset at cutoff: sessions strictly before the
// cutoff move into historical bundles, everything at or after it stays
// live. The input dataset is not mutated.
func Archive(dataset catalog.Dataset, cutoff catalog.ShowTime, opts Options) Result {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "archive")

	live := dataset.Clone()
	windows := make(map[string]*Bundle)
	archived := 0

	for i := range live.Films {
		film := &live.Films[i]

		var keep []catalog.Session
		byWindow := make(map[string][]catalog.Session)
		for _, session := range film.Sessions {
			if session.ShowTime.Before(cutoff) {
				window := session.ShowTime.Window()
				byWindow[window] = append(byWindow[window], session)
				archived++
				continue
			}
			keep = append(keep, session)
		}
		if len(byWindow) == 0 {
			continue
		}

		for window, sessions := range byWindow {
			bundle, ok := windows[window]
			if !ok {
				bundle = &Bundle{Window: window}
				windows[window] = bundle
			}
			bundle.Films = append(bundle.Films, BundledFilm{
				Title:       film.Title,
				Year:        film.Year,
				IdentityURL: film.IdentityURL,
				Sessions:    sessions,
			})
		}

		if !opts.DryRun {
			film.Sessions = keep
		}
	}

	bundles := make([]Bundle, 0, len(windows))
	for _, bundle := range windows {
		sort.Slice(bundle.Films, func(i, j int) bool {
			if bundle.Films[i].Title != bundle.Films[j].Title {
				return bundle.Films[i].Title < bundle.Films[j].Title
			}
			return bundle.Films[i].Year < bundle.Films[j].Year
		})
		bundles = append(bundles, *bundle)
	}
	sort.Slice(bundles, func(i, j int) bool { return bundles[i].Window < bundles[j].Window })

	logger.Info("archive pass complete",
		logging.String("cutoff", cutoff.String()),
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("sessions_archived", archived),
		logging.Int("windows", len(bundles)))

	return Result{Live: live, Bundles: bundles, SessionsArchived: archived}
}
