package textutil

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripDiacritics removes combining marks, so "Almodóvar" becomes "Almodovar".
func StripDiacritics(value string) string {
	out, _, err := transform.String(diacriticStripper, value)
	if err != nil {
		return value
	}
	return out
}

// NormalizeTitle lowercases, strips accents, and collapses whitespace and
// punctuation so spelling variants of the same title compare equal.
func NormalizeTitle(title string) string {
	title = StripDiacritics(strings.ToLower(strings.TrimSpace(title)))
	var b strings.Builder
	b.Grow(len(title))
	lastSpace := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// SearchKey builds the cache and merge key for a (title, year) pair.
// A zero year means unknown and is encoded as an empty segment so that a
// later-learned year does not silently split the key space.
func SearchKey(title string, year int) string {
	key := NormalizeTitle(title)
	if year > 0 {
		return key + "|" + strconv.Itoa(year)
	}
	return key + "|"
}

// SlugifyName converts a person name into the lowercase-hyphenated slug
// format used by the rating source's director search filter.
func SlugifyName(name string) string {
	name = StripDiacritics(strings.ToLower(strings.TrimSpace(name)))
	fields := strings.Fields(name)
	return strings.Join(fields, "-")
}
