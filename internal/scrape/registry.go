package scrape

import (
	"fmt"
	"sort"
)

// Registry holds the configured theater adapters keyed by theater key.
type Registry struct {
	scrapers map[string]Scraper
}

// NewRegistry builds the registry with every supported adapter.
func NewRegistry(client *Client) *Registry {
	r := &Registry{scrapers: make(map[string]Scraper)}
	r.register(NewCineteca(client))
	r.register(NewGolem(client))
	r.register(NewCinePaz(client))
	return r
}

func (r *Registry) register(s Scraper) {
	r.scrapers[s.Info().Key] = s
}

// Keys returns all registered theater keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.scrapers))
	for key := range r.scrapers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the adapter for a theater key.
func (r *Registry) Lookup(key string) (Scraper, error) {
	s, ok := r.scrapers[key]
	if !ok {
		return nil, fmt.Errorf("unknown theater %q", key)
	}
	return s, nil
}

// Select returns the adapters for the given keys, or every adapter when
// keys is empty. Order follows sorted theater keys.
func (r *Registry) Select(keys []string) ([]Scraper, error) {
	if len(keys) == 0 {
		keys = r.Keys()
	} else {
		keys = append([]string(nil), keys...)
		sort.Strings(keys)
	}
	scrapers := make([]Scraper, 0, len(keys))
	for _, key := range keys {
		s, err := r.Lookup(key)
		if err != nil {
			return nil, err
		}
		scrapers = append(scrapers, s)
	}
	return scrapers, nil
}

// ByPeriod returns the adapters whose cinema publishes on the given period.
func (r *Registry) ByPeriod(period string) []Scraper {
	var scrapers []Scraper
	for _, key := range r.Keys() {
		s := r.scrapers[key]
		if s.Info().UpdatePeriod == period {
			scrapers = append(scrapers, s)
		}
	}
	return scrapers
}
