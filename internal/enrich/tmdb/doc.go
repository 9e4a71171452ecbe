// Package tmdb provides the TMDB API client used for metadata enrichment.
package tmdb
