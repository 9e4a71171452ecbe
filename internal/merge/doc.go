// Package merge reconciles a scrape batch into the canonical dataset. It
// owns the conflict rules: sessions are unioned on their (showtime,
// location) key, previously scraped values are never erased by emptier
// incoming data, and a resolved identity reference is adopted once and then
// defended against silent replacement. Re-running a merge with the same
// batch is a no-op.
package merge
