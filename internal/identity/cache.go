package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"cartelera/internal/catalog"
	"cartelera/internal/logging"
)

// Entry is a cached resolution for one search key: the resolved identity
// (or an explicit no-match) and, once enrichment ran, a metadata snapshot.
type Entry struct {
	Key            string            `json:"key"`
	URL            string            `json:"url,omitempty"`
	ShortURL       string            `json:"short_url,omitempty"`
	CatalogURL     string            `json:"catalog_url,omitempty"`
	NoMatch        bool              `json:"no_match,omitempty"`
	Metadata       *catalog.Metadata `json:"metadata,omitempty"`
	MetadataAbsent bool              `json:"metadata_absent,omitempty"`
	CachedAt       time.Time         `json:"cached_at"`
}

// Identity returns the entry's identity reference.
func (e Entry) Identity() Identity {
	return Identity{URL: e.URL, ShortURL: e.ShortURL}
}

// Cache provides thread-safe access to the identity cache. If path is
// empty the cache is non-persistent but still deduplicates within a run.
type Cache struct {
	path     string
	logger   *slog.Logger
	mu       sync.Mutex
	entries  map[string]Entry
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done  chan struct{}
	entry Entry
}

// NewCache creates a cache instance, loading any existing cache file.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "identitycache")

	c := &Cache{
		path:     path,
		logger:   logger,
		entries:  make(map[string]Entry),
		inflight: make(map[string]*inflightCall),
	}

	if path == "" {
		return c
	}

	if err := c.load(); err != nil {
		logger.Warn("failed to load identity cache",
			logging.Error(err),
			logging.String("path", path))
	}
	return c
}

// Lookup returns the cached entry for a search key if present.
func (c *Cache) Lookup(key string) (Entry, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, found := c.entries[key]
	return entry, found
}

// Resolve returns the cached entry for key, or runs lookup exactly once to
// populate it. Concurrent resolves of the same key share a single lookup;
// the insert is an atomic check-then-insert per key, so divergent entries
// cannot race in. The returned error only reports persistence problems;
// the entry is valid either way.
func (c *Cache) Resolve(key string, lookup func() Entry) (Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return lookup(), nil
	}

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return entry, nil
	}
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-call.done
		return call.entry, nil
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	entry := lookup()
	entry.Key = key
	entry.CachedAt = time.Now().UTC()

	c.mu.Lock()
	c.entries[key] = entry
	saveErr := c.save()
	delete(c.inflight, key)
	c.mu.Unlock()

	call.entry = entry
	close(call.done)

	if saveErr != nil {
		return entry, fmt.Errorf("persist cache: %w", saveErr)
	}
	return entry, nil
}

// Update stores a modified entry and persists the change. Used by the
// enricher to attach metadata snapshots.
func (c *Cache) Update(entry Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	entry.CachedAt = time.Now().UTC()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// InvalidateForBackfill clears negative matches and metadata snapshots so
// a backfill run re-attempts lookups and re-fetches metadata. Resolved
// identity references are kept.
func (c *Cache) InvalidateForBackfill() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.entries {
		if entry.NoMatch {
			delete(c.entries, key)
			continue
		}
		entry.Metadata = nil
		entry.MetadataAbsent = false
		c.entries[key] = entry
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cache invalidated for backfill", logging.Int("entry_count", len(c.entries)))
	return nil
}

// Count returns the number of cached entries.
func (c *Cache) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// load reads the cache file into memory.
func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			c.entries[entry.Key] = entry
		}
	}
	c.logger.Debug("loaded identity cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache to disk atomically. Callers hold c.mu.
func (c *Cache) save() error {
	if c.path == "" {
		return nil
	}

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
