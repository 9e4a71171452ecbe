package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Details models the TMDB details payload with translations appended.
// Movie and TV payloads share this shape; unused fields stay zero.
type Details struct {
	ID                  int64    `json:"id"`
	Title               string   `json:"title"`
	Name                string   `json:"name"`
	OriginalTitle       string   `json:"original_title"`
	OriginalName        string   `json:"original_name"`
	OriginalLanguage    string   `json:"original_language"`
	Runtime             int      `json:"runtime"`
	NumberOfEpisodes    int      `json:"number_of_episodes"`
	EpisodeRunTime      []int    `json:"episode_run_time"`
	OriginCountry       []string `json:"origin_country"`
	Genres              []Named  `json:"genres"`
	ProductionCountries []Named  `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage `json:"spoken_languages"`
	Translations        struct {
		Translations []Translation `json:"translations"`
	} `json:"translations"`
}

// Named is a TMDB list element carrying just a display name.
type Named struct {
	Name string `json:"name"`
}

// SpokenLanguage is one entry of the spoken_languages list.
type SpokenLanguage struct {
	ISO6391     string `json:"iso_639_1"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name"`
}

// Translation is one localized title entry.
type Translation struct {
	ISO6391  string          `json:"iso_639_1"`
	ISO31661 string          `json:"iso_3166_1"`
	Data     TranslationData `json:"data"`
}

// TranslationData carries the translated title fields.
type TranslationData struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}

// Fetcher defines the TMDB operation used by enrichment.
type Fetcher interface {
	Details(ctx context.Context, mediaType string, id int64) (*Details, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Details fetches movie or TV details with translations in one request.
func (c *Client) Details(ctx context.Context, mediaType string, id int64) (*Details, error) {
	if mediaType != "movie" && mediaType != "tv" {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	if id <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	endpoint, err := url.Parse(fmt.Sprintf("%s/%s/%d", c.baseURL, mediaType, id))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("append_to_response", "translations")
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb details returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Details
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode tmdb response: %w", err)
	}
	return &payload, nil
}

var tmdbURLPattern = regexp.MustCompile(`themoviedb\.org/(movie|tv)/(\d+)`)

// ParseURL extracts (mediaType, id) from a TMDB film URL.
func ParseURL(tmdbURL string) (string, int64, bool) {
	match := tmdbURLPattern.FindStringSubmatch(tmdbURL)
	if match == nil {
		return "", 0, false
	}
	id, err := strconv.ParseInt(match[2], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return match[1], id, true
}
