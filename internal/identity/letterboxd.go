package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// SearchResult is one candidate from the rating-source film search.
type SearchResult struct {
	URL   string
	Title string
	Year  int
}

// Searcher is the film search operation the matcher depends on.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// LetterboxdClient searches the Letterboxd film index by scraping the
// public search page.
type LetterboxdClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Searcher = (*LetterboxdClient)(nil)

// Option configures a LetterboxdClient.
type Option func(*LetterboxdClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *LetterboxdClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewLetterboxdClient creates a search client against the given base URL.
func NewLetterboxdClient(baseURL, userAgent string, opts ...Option) (*LetterboxdClient, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("letterboxd base url required")
	}
	client := &LetterboxdClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search runs one film search and returns the top result, or nil when the
// results list is empty.
func (c *LetterboxdClient) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint := c.baseURL + "/search/films/" + url.PathEscape(query) + "/"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("film search returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return c.parseResults(doc), nil
}

// parseResults extracts the first film result from the search page.
func (c *LetterboxdClient) parseResults(doc *goquery.Document) *SearchResult {
	wrapper := doc.Find("ul.results span.film-title-wrapper").First()
	if wrapper.Length() == 0 {
		return nil
	}
	link := wrapper.Find("a").First()
	href, ok := link.Attr("href")
	if !ok {
		return nil
	}

	result := &SearchResult{
		URL:   c.absoluteURL(href),
		Title: strings.TrimSpace(link.Text()),
	}
	wrapper.Find("small.metadata").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if year, err := strconv.Atoi(text); err == nil {
			result.Year = year
			return false
		}
		return true
	})
	return result
}

func (c *LetterboxdClient) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return c.baseURL + "/" + strings.TrimPrefix(href, "/")
}
