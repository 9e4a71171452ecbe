// Package identity resolves scraped film records against the rating
// source's catalog. Lookups go through a persistent cache keyed by the
// normalized (title, year) search key; negative results are cached too so
// unresolvable titles are not retried on every run.
package identity
