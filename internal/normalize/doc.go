// Package normalize converts theater-specific raw screening records into
// canonical sessions and groups one scrape batch into film records ready
// for identity matching and merging.
package normalize
