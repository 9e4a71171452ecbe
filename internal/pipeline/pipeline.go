package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"cartelera/internal/archive"
	"cartelera/internal/catalog"
	"cartelera/internal/config"
	"cartelera/internal/dataset"
	"cartelera/internal/enrich"
	"cartelera/internal/enrich/tmdb"
	"cartelera/internal/identity"
	"cartelera/internal/logging"
	"cartelera/internal/merge"
	"cartelera/internal/normalize"
	"cartelera/internal/scrape"
)

// ErrRunInProgress indicates another invocation holds the dataset lock.
var ErrRunInProgress = errors.New("another run is already in progress")

// Pipeline binds the configured collaborators for dataset operations.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *scrape.Registry
	cache    *identity.Cache
	matcher  *identity.Matcher
	enricher merge.Enricher
}

// New builds a pipeline from configuration. The TMDB client is optional;
// without an API key enrichment still carries the film page fields.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client := scrape.NewClient(time.Duration(cfg.Scrape.RequestTimeout)*time.Second, cfg.Scrape.UserAgent)
	registry := scrape.NewRegistry(client)

	cache := identity.NewCache(cfg.IdentityCachePath(), logger)

	searcher, err := identity.NewLetterboxdClient(cfg.Letterboxd.BaseURL, cfg.Scrape.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("build search client: %w", err)
	}
	matcher := identity.NewMatcher(searcher, cache, logger)

	var fetcher tmdb.Fetcher
	if cfg.TMDB.APIKey != "" {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
		if err != nil {
			return nil, fmt.Errorf("build tmdb client: %w", err)
		}
		fetcher = client
	} else {
		logger.Warn("no tmdb api key configured, catalog metadata will be skipped")
	}
	pages := enrich.NewPageClient(cfg.Scrape.UserAgent)
	enricher := enrich.NewEnricher(pages, fetcher, cache, cfg.TMDB.Language, logger)

	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		cache:    cache,
		matcher:  matcher,
		enricher: enricher,
	}, nil
}

// Registry exposes the theater adapter registry.
func (p *Pipeline) Registry() *scrape.Registry {
	return p.registry
}

// RunOptions controls one scrape-and-merge run.
type RunOptions struct {
	From     time.Time
	To       time.Time
	Theaters []string
	Backfill bool
	// SkipEnrich merges without the metadata pass.
	SkipEnrich bool
}

// RunResult summarizes a completed run.
type RunResult struct {
	RunID      string
	Records    int
	BatchFilms int
	Films      int
	Sessions   int
	Stats      merge.Stats
}

// Run executes the full scrape, match, merge, enrich, save sequence.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	runID := uuid.NewString()
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))

	theaters := opts.Theaters
	if len(theaters) == 0 {
		theaters = p.cfg.Scrape.Theaters
	}
	scrapers, err := p.registry.Select(theaters)
	if err != nil {
		return nil, err
	}

	if opts.Backfill {
		if err := p.cache.InvalidateForBackfill(); err != nil {
			return nil, fmt.Errorf("invalidate cache for backfill: %w", err)
		}
	}

	records := scrape.FetchAll(ctx, logger, scrapers, opts.From, opts.To, p.cfg.Scrape.Concurrency)
	batch := normalize.BuildFilms(records, logger)
	p.resolveIdentities(ctx, batch, logger)

	store, err := dataset.Open(p.cfg.DatasetPath())
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer store.Close()

	ds, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	mergeOpts := merge.Options{
		Backfill: opts.Backfill,
		Enricher: p.enricher,
		Logger:   logger,
	}
	if opts.SkipEnrich {
		mergeOpts.Enricher = nil
	}
	merged, stats := merge.Merge(ctx, ds, batch, mergeOpts)

	if err := store.Save(ctx, merged); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}

	result := &RunResult{
		RunID:      runID,
		Records:    len(records),
		BatchFilms: len(batch),
		Films:      len(merged.Films),
		Sessions:   merged.SessionCount(),
		Stats:      stats,
	}
	logger.Info("run complete",
		logging.Int("records", result.Records),
		logging.Int("batch_films", result.BatchFilms),
		logging.Int("films", result.Films),
		logging.Int("sessions", result.Sessions))
	return result, nil
}

// resolveIdentities attaches identity references to the batch in place.
// Unresolvable films keep their title key and stay mergeable.
func (p *Pipeline) resolveIdentities(ctx context.Context, batch []catalog.Film, logger *slog.Logger) {
	resolved := 0
	for i := range batch {
		film := &batch[i]
		id, err := p.matcher.Resolve(ctx, film.Title, film.Year, film.Director)
		if err != nil {
			if !errors.Is(err, identity.ErrNoMatch) {
				logger.Warn("identity resolution failed",
					logging.String(logging.FieldFilm, film.Title),
					logging.Error(err))
			}
			continue
		}
		film.IdentityURL = id.URL
		film.IdentityShortURL = id.ShortURL
		resolved++
	}
	logger.Info("identity resolution complete",
		logging.Int("resolved", resolved),
		logging.Int("batch_films", len(batch)))
}

// Archive moves sessions before cutoff into historical storage. With
// dryRun the partition is computed and returned but nothing is written.
func (p *Pipeline) Archive(ctx context.Context, cutoff catalog.ShowTime, dryRun bool) (*archive.Result, error) {
	unlock, err := p.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	store, err := dataset.Open(p.cfg.DatasetPath())
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer store.Close()

	ds, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	result := archive.Archive(ds, cutoff, archive.Options{DryRun: dryRun, Logger: p.logger})
	if dryRun {
		return &result, nil
	}

	if err := store.AppendArchive(ctx, result.Bundles); err != nil {
		return nil, fmt.Errorf("store archive bundles: %w", err)
	}
	if err := store.Save(ctx, result.Live); err != nil {
		return nil, fmt.Errorf("save dataset: %w", err)
	}
	return &result, nil
}

// Dataset loads the current canonical dataset read-only.
func (p *Pipeline) Dataset(ctx context.Context) (catalog.Dataset, error) {
	store, err := dataset.Open(p.cfg.DatasetPath())
	if err != nil {
		return catalog.Dataset{}, fmt.Errorf("open dataset: %w", err)
	}
	defer store.Close()
	return store.Load(ctx)
}

// acquireLock takes the exclusive run lock, returning the release func.
func (p *Pipeline) acquireLock() (func(), error) {
	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return nil, ErrRunInProgress
	}
	return func() { _ = lock.Unlock() }, nil
}
