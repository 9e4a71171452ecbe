// Package enrich attaches external metadata to films: the rating and share
// link scraped from the film's rating-source page, and the descriptive
// fields (genres, countries, languages, runtime, translated titles) fetched
// from the TMDB API. Results are snapshotted into the identity cache so
// repeated runs do not refetch.
package enrich
