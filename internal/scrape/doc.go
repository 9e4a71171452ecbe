// Package scrape defines the theater adapter contract and the adapters for
// the supported cinemas. Each adapter turns a cinema's website into a flat
// sequence of raw screening records; a single malformed listing is skipped,
// only a total fetch failure surfaces as an error.
package scrape
