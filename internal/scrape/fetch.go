package scrape

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"cartelera/internal/logging"
)

// FetchAll runs the given adapters concurrently and collects every record
// they produce. All output is gathered before the function returns so that
// identity matching and merging operate on a complete batch. An adapter
// that fails entirely is logged and skipped; it never fails the batch.
func FetchAll(ctx context.Context, logger *slog.Logger, scrapers []Scraper, from, to time.Time, concurrency int) []RawScreeningRecord {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "scrape")
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []RawScreeningRecord
	)
	sem := make(chan struct{}, concurrency)

	for _, scraper := range scrapers {
		wg.Add(1)
		go func(s Scraper) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			info := s.Info()
			start := time.Now()
			fetched, err := s.Fetch(ctx, from, to)
			if err != nil {
				logger.Error("theater fetch failed",
					logging.String(logging.FieldTheater, info.Key),
					logging.Error(err))
				return
			}
			logger.Info("theater fetched",
				logging.String(logging.FieldTheater, info.Key),
				logging.Int("records", len(fetched)),
				logging.Duration("elapsed", time.Since(start)))

			mu.Lock()
			records = append(records, fetched...)
			mu.Unlock()
		}(scraper)
	}

	wg.Wait()
	return records
}
