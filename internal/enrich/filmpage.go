package enrich

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// FilmPage is the film-page metadata available from static HTML: the
// average rating, the short share URL, the catalog URL derived from the
// page's TMDB reference, and the viewer count when the page renders it.
type FilmPage struct {
	Rating      float64
	ViewerCount int64
	ShortURL    string
	CatalogURL  string
}

// PageFetcher fetches the film page for an identity URL.
type PageFetcher interface {
	FetchFilmPage(ctx context.Context, filmURL string) (*FilmPage, error)
}

// PageClient fetches and parses rating-source film pages.
type PageClient struct {
	userAgent  string
	httpClient *http.Client
}

var _ PageFetcher = (*PageClient)(nil)

// PageOption configures a PageClient.
type PageOption func(*PageClient)

// WithPageHTTPClient overrides the default HTTP client.
func WithPageHTTPClient(client *http.Client) PageOption {
	return func(c *PageClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewPageClient creates a film page client.
func NewPageClient(userAgent string, opts ...PageOption) *PageClient {
	client := &PageClient{
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchFilmPage downloads one film page and extracts its metadata.
func (c *PageClient) FetchFilmPage(ctx context.Context, filmURL string) (*FilmPage, error) {
	filmURL = strings.TrimSpace(filmURL)
	if filmURL == "" {
		return nil, errors.New("film url must not be empty")
	}
	filmURL = strings.TrimRight(filmURL, "/") + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, filmURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch film page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("film page returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse film page: %w", err)
	}
	return ParseFilmPage(doc), nil
}

var (
	ratingPattern   = regexp.MustCompile(`([\d.]+)\s+out of`)
	shortURLPattern = regexp.MustCompile(`^url-field-film-`)
	watchedPattern  = regexp.MustCompile(`Watched by ([\d,]+)`)
)

// ParseFilmPage extracts the static metadata from a film page document.
func ParseFilmPage(doc *goquery.Document) *FilmPage {
	page := &FilmPage{}

	if content, ok := doc.Find(`meta[name="twitter:data2"]`).Attr("content"); ok {
		if match := ratingPattern.FindStringSubmatch(content); match != nil {
			if rating, err := strconv.ParseFloat(match[1], 64); err == nil {
				page.Rating = rating
			}
		}
	}

	doc.Find("input[id]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id, _ := sel.Attr("id")
		if !shortURLPattern.MatchString(id) {
			return true
		}
		page.ShortURL, _ = sel.Attr("value")
		return false
	})

	body := doc.Find("body").First()
	if tmdbID, ok := body.Attr("data-tmdb-id"); ok && tmdbID != "" {
		tmdbType := body.AttrOr("data-tmdb-type", "movie")
		page.CatalogURL = fmt.Sprintf("https://www.themoviedb.org/%s/%s/", tmdbType, tmdbID)
	}

	// Viewer count renders only when the stats section is in the static
	// HTML, so this stays best effort.
	if aria, ok := doc.Find("div.production-statistic.-watches").Attr("aria-label"); ok {
		aria = strings.ReplaceAll(aria, "\u00a0", " ")
		if match := watchedPattern.FindStringSubmatch(aria); match != nil {
			if viewers, err := strconv.ParseInt(strings.ReplaceAll(match[1], ",", ""), 10, 64); err == nil {
				page.ViewerCount = viewers
			}
		}
	}
	return page
}

// ParseViewerCount converts an abbreviated count like "1.5K" or "2M" into
// an integer.
func ParseViewerCount(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, errors.New("empty viewer count")
	}

	multiplier := int64(1)
	switch text[len(text)-1] {
	case 'K', 'k':
		multiplier = 1_000
		text = text[:len(text)-1]
	case 'M', 'm':
		multiplier = 1_000_000
		text = text[:len(text)-1]
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("parse viewer count: %w", err)
	}
	return int64(value * float64(multiplier)), nil
}
