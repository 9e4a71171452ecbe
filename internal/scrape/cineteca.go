package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Cineteca scrapes Cineteca Madrid. The program page lists film links per
// day; each film page carries the title, director, shooting year, a ticket
// link, and a month/day/hour session listing.
type Cineteca struct {
	client *Client
	info   CinemaInfo
}

// NewCineteca builds the Cineteca Madrid adapter.
func NewCineteca(client *Client) *Cineteca {
	return &Cineteca{
		client: client,
		info: CinemaInfo{
			Key:          "cineteca",
			Name:         "Cineteca Madrid",
			BaseURL:      "https://www.cinetecamadrid.com",
			UpdatePeriod: "monthly",
		},
	}
}

// Info returns the cinema description.
func (c *Cineteca) Info() CinemaInfo { return c.info }

func (c *Cineteca) dayURL(day time.Time) string {
	date := day.Format("2006-01-02")
	return fmt.Sprintf("%s/programacion?to=%s&since=%s", c.info.BaseURL, date, date)
}

// Fetch walks the date range day by day, collects film links, and parses
// each film page once. Individual page failures are skipped; Fetch fails
// only when nothing could be retrieved at all.
func (c *Cineteca) Fetch(ctx context.Context, from, to time.Time) ([]RawScreeningRecord, error) {
	seen := make(map[string]struct{})
	var records []RawScreeningRecord
	fetched := 0
	var lastErr error

	err := eachDay(from, to, func(day time.Time) error {
		doc, err := c.client.Document(ctx, c.dayURL(day))
		if err != nil {
			lastErr = err
			return nil
		}
		fetched++
		for _, link := range c.ParseFilmLinks(doc) {
			if _, ok := seen[link]; ok {
				continue
			}
			seen[link] = struct{}{}
			filmDoc, err := c.client.Document(ctx, link)
			if err != nil {
				lastErr = err
				continue
			}
			records = append(records, c.ParseFilmPage(filmDoc, link, day)...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if fetched == 0 && lastErr != nil {
		return nil, fmt.Errorf("cineteca: %w", lastErr)
	}
	return records, nil
}

// ParseFilmLinks extracts film detail URLs from a day listing page.
func (c *Cineteca) ParseFilmLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("h2.title a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		links = append(links, c.absoluteURL(href))
	})
	return links
}

// ParseFilmPage extracts every screening record from a film detail page.
// The reference day provides the year for the month/day session headers.
func (c *Cineteca) ParseFilmPage(doc *goquery.Document, filmURL string, ref time.Time) []RawScreeningRecord {
	details := doc.Find("div.tit-ficha").First()
	title := strings.TrimSpace(details.Find("h2.title").First().Text())
	if title == "" {
		return nil
	}
	year := strings.TrimSpace(details.Find(`div[class*="ano-filmacion"]`).First().Text())
	director := strings.TrimSpace(details.Find(`div[class*="director"]`).First().Text())
	ticketsURL := c.ticketURL(doc)

	base := RawScreeningRecord{
		Theater:     c.info.Key,
		TheaterName: c.info.Name,
		Title:       title,
		Director:    director,
		YearText:    year,
		FilmURL:     filmURL,
		Location:    c.info.Name,
		TicketsURL:  ticketsURL,
	}

	var records []RawScreeningRecord
	currentYear := ref.Year()
	var currentMonth time.Month
	currentDay := 0

	doc.Find("div.sb-sessions__items").First().Children().Each(func(_ int, sel *goquery.Selection) {
		switch {
		case sel.Is("h2.sb-sessions__date-month"):
			if month, ok := SpanishMonth(sel.Text()); ok {
				currentMonth = month
			}
		case sel.Is("h4.sb-sessions__date-day"):
			// "Jueves 29" keeps the day in its last field
			fields := strings.Fields(strings.TrimSpace(sel.Text()))
			if len(fields) > 0 {
				if day, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
					currentDay = day
				}
			}
		case sel.Is("ul.sb-sessions__date-hours"):
			hour := strings.TrimSpace(sel.Find("li.sb-sessions__date-hours-hour").First().Text())
			hour = strings.TrimSpace(strings.TrimSuffix(hour, "h"))
			if hour == "" || currentMonth == 0 || currentDay == 0 {
				return
			}
			rec := base
			rec.ShowTimeText = fmt.Sprintf("%04d-%02d-%02d %s", currentYear, currentMonth, currentDay, hour)
			records = append(records, rec)
		}
	})
	return records
}

func (c *Cineteca) ticketURL(doc *goquery.Document) string {
	href, _ := doc.Find(`div[class*="field--name-field-ticketing-links"] a[href]`).First().Attr("href")
	return href
}

func (c *Cineteca) absoluteURL(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	base, err := url.Parse(c.info.BaseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(parsed).String()
}
