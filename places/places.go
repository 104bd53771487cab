// Package places resolves place names to coordinates through a
// Nominatim-compatible geocoding API. Lookups are best-effort: a miss
// returns nil without error, and callers treat transport errors the same
// as a miss.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tripweave/tripweave/trip"
)

// Lookup is the place-resolution contract consumed by day workers.
type Lookup interface {
	// LookupPlace resolves name within cityHint. Returns (nil, nil) when
	// no match exists; errors only on transport failure.
	LookupPlace(ctx context.Context, name, cityHint string) (*trip.Place, error)
}

// Client queries a Nominatim-compatible search endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithCacheTTL sets how long resolved places are served from cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = newCache(ttl)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// NewClient creates a geocoding client for the given base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  newCache(24 * time.Hour),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// nominatimResult is one entry of a Nominatim search response.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
}

// LookupPlace resolves a place name, preferring matches within cityHint.
func (c *Client) LookupPlace(ctx context.Context, name, cityHint string) (*trip.Place, error) {
	if name == "" {
		return nil, nil
	}

	query := name
	if cityHint != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(cityHint)) {
		query = name + ", " + cityHint
	}

	if p, ok := c.cache.get(query); ok {
		return p, nil
	}

	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "tripweave/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("place lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("place lookup: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read lookup response: %w", err)
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("parse lookup response: %w", err)
	}
	if len(results) == 0 {
		c.logger.Debug("Place not found", "query", query)
		// Negative results are cached too; retrying the same miss within
		// one run is wasted work.
		c.cache.put(query, nil)
		return nil, nil
	}

	lat, _ := strconv.ParseFloat(results[0].Lat, 64)
	lng, _ := strconv.ParseFloat(results[0].Lon, 64)
	place := &trip.Place{
		Name:    name,
		Lat:     lat,
		Lng:     lng,
		Address: results[0].DisplayName,
		City:    cityHint,
	}

	c.cache.put(query, place)
	return place, nil
}
