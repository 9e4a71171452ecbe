package scrape

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// CinePaz scrapes Cine Paz Madrid. The cartelera page carries every day in
// one document; the separate VOSE page tells subtitled screenings apart so
// non-VOSE sessions of the same film can be tagged as dubbed.
type CinePaz struct {
	client *Client
	info   CinemaInfo
}

// NewCinePaz builds the Cine Paz Madrid adapter.
func NewCinePaz(client *Client) *CinePaz {
	return &CinePaz{
		client: client,
		info: CinemaInfo{
			Key:          "cine-paz",
			Name:         "Cine Paz Madrid",
			BaseURL:      "https://www.cinepazmadrid.es",
			UpdatePeriod: "weekly",
		},
	}
}

// Info returns the cinema description.
func (p *CinePaz) Info() CinemaInfo { return p.info }

var (
	cinePazFilmIDPattern = regexp.MustCompile(`/detalles/(\d+)_`)
	cinePazDayPattern    = regexp.MustCompile(`(\d{2})/(\d{2})`)
	cinePazTimePattern   = regexp.MustCompile(`^\d{1,2}:\d{2}`)
	voseSuffixPattern    = regexp.MustCompile(`(?i)\s*(\(vose\)|-\s*VOSE)\s*$`)
	vosePrefixPattern    = regexp.MustCompile(`(?i)^VOSE\s*`)
)

// Fetch loads the VOSE and cartelera pages once and extracts every session
// within the date range.
func (p *CinePaz) Fetch(ctx context.Context, from, to time.Time) ([]RawScreeningRecord, error) {
	voseDoc, err := p.client.Document(ctx, p.info.BaseURL+"/es/vose")
	if err != nil {
		return nil, fmt.Errorf("cine-paz vose page: %w", err)
	}
	voseIDs := p.ParseVoseFilmIDs(voseDoc)

	carteleraDoc, err := p.client.Document(ctx, p.info.BaseURL+"/es/cartelera")
	if err != nil {
		return nil, fmt.Errorf("cine-paz cartelera: %w", err)
	}
	return p.ParseCartelera(carteleraDoc, voseIDs, from, to), nil
}

// ParseVoseFilmIDs extracts the numeric film IDs present on the VOSE page.
func (p *CinePaz) ParseVoseFilmIDs(doc *goquery.Document) map[string]struct{} {
	ids := make(map[string]struct{})
	doc.Find(`a[href*="/es/detalles/"]`).Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if id := extractCinePazFilmID(href); id != "" {
			ids[id] = struct{}{}
		}
	})
	return ids
}

// ParseCartelera walks the day-separated cartelera container and returns
// the sessions falling inside [from, to].
func (p *CinePaz) ParseCartelera(doc *goquery.Document, voseIDs map[string]struct{}, from, to time.Time) []RawScreeningRecord {
	var records []RawScreeningRecord
	var currentDate time.Time

	doc.Find("div.contenedor_horarios").First().Children().Each(func(_ int, child *goquery.Selection) {
		switch {
		case child.HasClass("rotulo_dia"):
			currentDate = p.resolveDay(strings.TrimSpace(child.Text()), from)
		case child.HasClass("contenedor_cines"):
			if currentDate.IsZero() || currentDate.Before(dayStart(from)) || currentDate.After(dayStart(to)) {
				return
			}
			child.Find("div.horarios").Each(func(_ int, entry *goquery.Selection) {
				records = append(records, p.parseFilmEntry(entry, currentDate, voseIDs)...)
			})
		}
	})
	return records
}

func (p *CinePaz) parseFilmEntry(entry *goquery.Selection, date time.Time, voseIDs map[string]struct{}) []RawScreeningRecord {
	peli := entry.Find("div.peli").First()
	if peli.Length() == 0 {
		return nil
	}
	titleLink := peli.Find("p.text-header-span a").First()
	rawTitle := strings.TrimSpace(titleLink.Text())
	detailURL, _ := titleLink.Attr("href")
	filmID := extractCinePazFilmID(detailURL)
	if rawTitle == "" || filmID == "" {
		return nil
	}
	title := strings.TrimSpace(voseSuffixPattern.ReplaceAllString(rawTitle, ""))
	if title == "" {
		return nil
	}

	director := strings.TrimSpace(peli.Find("p.gibsonL").First().Text())
	director = strings.TrimSpace(strings.TrimPrefix(director, "de "))

	vose := entry.Find("div.peli div.etiqueta-vose").Length() > 0

	// A non-VOSE screening of a film that also plays in VOSE is dubbed;
	// everything else counts as original audio.
	version := ""
	if !vose && contains(voseIDs, filmID) {
		version = "dubbed"
	}

	base := RawScreeningRecord{
		Theater:     p.info.Key,
		TheaterName: p.info.Name,
		Title:       title,
		Director:    director,
		FilmURL:     p.absoluteURL(detailURL),
		Location:    p.info.Name,
		VersionText: version,
	}

	var records []RawScreeningRecord
	entry.Find("div.horas a.metrica").Each(func(_ int, hourSel *goquery.Selection) {
		timeText := strings.TrimSpace(vosePrefixPattern.ReplaceAllString(strings.TrimSpace(hourSel.Text()), ""))
		if !cinePazTimePattern.MatchString(timeText) {
			return
		}
		ticketURL, _ := hourSel.Attr("href")
		rec := base
		rec.ShowTimeText = date.Format("2006-01-02") + " " + timeText
		rec.TicketsURL = p.absoluteURL(ticketURL)
		records = append(records, rec)
	})
	return records
}

// resolveDay turns a label like "Domingo 01/03" (or "Hoy") into a date.
// DD/MM labels before the reference month roll over to the next year.
func (p *CinePaz) resolveDay(label string, reference time.Time) time.Time {
	if strings.EqualFold(strings.TrimSpace(label), "hoy") {
		return dayStart(reference)
	}
	match := cinePazDayPattern.FindStringSubmatch(label)
	if match == nil {
		return time.Time{}
	}
	day, _ := strconv.Atoi(match[1])
	month, _ := strconv.Atoi(match[2])
	year := reference.Year()
	if time.Month(month) < reference.Month() {
		year++
	}
	resolved := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if resolved.Day() != day {
		return time.Time{}
	}
	return resolved
}

func (p *CinePaz) absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return p.info.BaseURL + "/" + strings.TrimPrefix(href, "/")
}

func extractCinePazFilmID(href string) string {
	match := cinePazFilmIDPattern.FindStringSubmatch(href)
	if match == nil {
		return ""
	}
	return match[1]
}

func contains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
