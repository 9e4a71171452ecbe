package scrape

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cartelera/internal/textutil"
)

// spanishMonths maps lowercase accent-stripped Spanish month names to
// their month numbers.
var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// SpanishMonth resolves a Spanish month name, tolerating case and accents.
func SpanishMonth(name string) (time.Month, bool) {
	month, ok := spanishMonths[textutil.StripDiacritics(strings.ToLower(strings.TrimSpace(name)))]
	return month, ok
}

var spanishDatePattern = regexp.MustCompile(`(?i)(\d{1,2})\s+de\s+(\p{L}+)\s*-\s*(\d{1,2}):(\d{2})h?`)

// ParseSpanishDate parses a listing date like "3 de Febrero - 17:00h" into
// the canonical showtime text, using referenceYear for the missing year.
func ParseSpanishDate(text string, referenceYear int) (string, error) {
	match := spanishDatePattern.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return "", fmt.Errorf("unrecognized date %q", text)
	}
	day, _ := strconv.Atoi(match[1])
	month, ok := SpanishMonth(match[2])
	if !ok {
		return "", fmt.Errorf("unknown month in %q", text)
	}
	hour, _ := strconv.Atoi(match[3])
	minute, _ := strconv.Atoi(match[4])
	if day < 1 || day > 31 || hour > 23 || minute > 59 {
		return "", fmt.Errorf("out-of-range date %q", text)
	}
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d", referenceYear, month, day, hour, minute), nil
}

// eachDay invokes fn for every day between from and to, inclusive.
func eachDay(from, to time.Time, fn func(day time.Time) error) error {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	to = time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := fn(day); err != nil {
			return err
		}
	}
	return nil
}
