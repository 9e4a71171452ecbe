package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Golem scrapes Golem Madrid. Each day has its own listing page with film
// titles and showtimes; the film detail page adds the director.
type Golem struct {
	client *Client
	info   CinemaInfo
}

// NewGolem builds the Golem Madrid adapter.
func NewGolem(client *Client) *Golem {
	return &Golem{
		client: client,
		info: CinemaInfo{
			Key:          "golem",
			Name:         "Golem Madrid",
			BaseURL:      "https://www.golem.es",
			UpdatePeriod: "weekly",
		},
	}
}

// Info returns the cinema description.
func (g *Golem) Info() CinemaInfo { return g.info }

func (g *Golem) dayURL(day time.Time) string {
	return fmt.Sprintf("%s/golem/golem-madrid/%s", g.info.BaseURL, day.Format("20060102"))
}

// Fetch walks the date range and parses each daily listing. Directors are
// fetched once per film from the detail page; a failed detail fetch leaves
// the director empty rather than dropping the screening.
func (g *Golem) Fetch(ctx context.Context, from, to time.Time) ([]RawScreeningRecord, error) {
	var records []RawScreeningRecord
	directors := make(map[string]string)
	fetched := 0
	var lastErr error

	err := eachDay(from, to, func(day time.Time) error {
		doc, err := g.client.Document(ctx, g.dayURL(day))
		if err != nil {
			lastErr = err
			return nil
		}
		fetched++
		records = append(records, g.ParseListing(doc, day)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("golem: %w", lastErr)
	}

	for i := range records {
		director, ok := directors[records[i].FilmURL]
		if !ok {
			director = g.fetchDirector(ctx, records[i].FilmURL)
			directors[records[i].FilmURL] = director
		}
		records[i].Director = director
	}
	return records, nil
}

// ParseListing extracts the screening records from one daily listing page.
func (g *Golem) ParseListing(doc *goquery.Document, day time.Time) []RawScreeningRecord {
	var records []RawScreeningRecord
	doc.Find("a.txtNegXXL").Each(func(_ int, titleSel *goquery.Selection) {
		rawTitle := strings.TrimSpace(titleSel.Text())
		if rawTitle == "" {
			return
		}
		version := ""
		title := rawTitle
		if strings.Contains(rawTitle, "(V.O.S.E.)") {
			version = "VOSE"
			title = strings.TrimSpace(strings.ReplaceAll(rawTitle, "(V.O.S.E.)", ""))
		}
		href, _ := titleSel.Attr("href")
		infoURL := g.absoluteURL(href)

		block := titleSel.Closest(`td[bgcolor="#ffffff"]`)
		if block.Length() == 0 {
			return
		}
		block.Find("span.horaXXXL a").Each(func(_ int, hourSel *goquery.Selection) {
			hour := strings.TrimSpace(hourSel.Text())
			if hour == "" {
				return
			}
			ticketHref, _ := hourSel.Attr("href")
			records = append(records, RawScreeningRecord{
				Theater:      g.info.Key,
				TheaterName:  g.info.Name,
				Title:        title,
				FilmURL:      infoURL,
				ShowTimeText: day.Format("2006-01-02") + " " + hour,
				Location:     g.info.Name,
				TicketsURL:   g.absoluteURL(ticketHref),
				VersionText:  version,
			})
		})
	})
	return records
}

// ParseDirector extracts the director from a film detail page.
func (g *Golem) ParseDirector(doc *goquery.Document) string {
	var director string
	doc.Find("td").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.Contains(sel.Text(), "Dirigida por:") {
			return true
		}
		if value := sel.Next(); value.Length() > 0 {
			director = strings.TrimSpace(value.Text())
			return false
		}
		return true
	})
	return director
}

func (g *Golem) fetchDirector(ctx context.Context, filmURL string) string {
	if filmURL == "" {
		return ""
	}
	doc, err := g.client.Document(ctx, filmURL)
	if err != nil {
		return ""
	}
	return g.ParseDirector(doc)
}

func (g *Golem) absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return g.info.BaseURL + "/" + strings.TrimPrefix(href, "/")
}
