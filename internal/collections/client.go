// Package collections fetches story collections from the public stories API.
//
// The API only lists collections by slug, so fetching a single collection
// means listing its slug and picking the entry with the matching
// collectionId. List responses are cached per slug.
package collections

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/story-viewer/internal/httpx"
	"github.com/fpang/story-viewer/internal/story"
)

const (
	// DefaultBaseURL is the public stories API.
	DefaultBaseURL = "https://staging-apis-v2.oono.ai/api/public"

	// DefaultCacheTTL matches how long the web client treats a listing as fresh.
	DefaultCacheTTL = 5 * time.Minute

	appTokenHeader = "App-Token"
	cacheKeyPrefix = "stories-collection:"
)

// ErrCollectionNotFound is returned by Get when the slug listing has no
// collection with the requested id.
var ErrCollectionNotFound = errors.New("collection not found")

// HTTPStatusError is returned when the API answers with a non-2xx status.
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string // e.g. "404 Not Found"
}

func (e *HTTPStatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return "API error: " + status
}

// ListResponse is the body of GET /stories-collection/.
type ListResponse struct {
	Success          bool               `json:"success"`
	Data             []story.Collection `json:"data"`
	TotalPages       int                `json:"totalPages"`
	TotalCollections int                `json:"totalCollections"`
}

// Client talks to the stories API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appToken   string
	cache      Cache
	cacheTTL   time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default retrying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache caches list responses in cache for ttl. A nil cache or a
// non-positive ttl disables caching.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// NewClient creates an API client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, appToken string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: httpx.NewClient(httpx.DefaultTimeout, httpx.DefaultRetryMax),
		baseURL:    strings.TrimRight(baseURL, "/"),
		appToken:   appToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- Queries ---

// Get returns the collection with collectionID from the listing of slug.
func (c *Client) Get(ctx context.Context, collectionID, slug string) (*story.Collection, error) {
	list, err := c.List(ctx, slug)
	if err != nil {
		return nil, err
	}
	for i := range list.Data {
		if list.Data[i].CollectionID == collectionID {
			return &list.Data[i], nil
		}
	}
	log.Debug().Str("collectionId", collectionID).Str("slug", slug).Int("listed", len(list.Data)).Msg("Collection not in listing")
	return nil, ErrCollectionNotFound
}

// List returns every collection published under slug.
func (c *Client) List(ctx context.Context, slug string) (*ListResponse, error) {
	key := cacheKeyPrefix + slug
	if c.caching() {
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("key", key).Msg("Collection cache read failed")
		case ok:
			var resp ListResponse
			if err := json.Unmarshal(body, &resp); err == nil {
				log.Debug().Str("slug", slug).Msg("Collection listing served from cache")
				return &resp, nil
			}
			log.Warn().Str("key", key).Msg("Discarding undecodable cache entry")
		}
	}

	body, err := c.get(ctx, "/stories-collection/?slug="+url.QueryEscape(slug))
	if err != nil {
		return nil, err
	}
	var resp ListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w (body: %s)", err, truncate(string(body), 200))
	}

	if c.caching() {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Collection cache write failed")
		}
	}
	return &resp, nil
}

func (c *Client) caching() bool {
	return c.cache != nil && c.cacheTTL > 0
}

// --- HTTP helpers ---

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	startTime := time.Now()
	reqURL := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set(appTokenHeader, c.appToken)
	}

	log.Debug().Str("method", http.MethodGet).Str("path", endpoint).Msg("Stories API request")
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		log.Debug().Int("statusCode", 0).Dur("duration", duration).Err(err).Msg("Stories API response")
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	log.Debug().Int("statusCode", resp.StatusCode).Dur("duration", duration).Msg("Stories API response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{URL: reqURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
