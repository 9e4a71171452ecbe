// Command cartelera aggregates film screening listings from Madrid
// theaters into one canonical dataset.
package main
