// Package images resolves keywords to stock-image URLs through a chain of
// providers consulted in priority order. Provider-level failures never
// surface to callers; the chain falls through and may legitimately end
// with an empty result.
package images

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Orientation constrains the shape of requested images.
type Orientation string

const (
	Landscape Orientation = "landscape"
	Portrait  Orientation = "portrait"
	Square    Orientation = "square"
)

// Fetcher is the image-resolution contract consumed by pipeline stages.
type Fetcher interface {
	// FetchImages resolves keyword to up to count image URLs. An empty
	// slice is a valid result, never an error for callers.
	FetchImages(ctx context.Context, keyword string, count int, orientation Orientation) []string
}

// Provider is one image source in the chain.
type Provider interface {
	// Name returns the provider identifier (e.g., "unsplash").
	Name() string

	// Search returns image URLs for a keyword. Errors are handled by the
	// chain, not by callers.
	Search(ctx context.Context, keyword string, count int, orientation Orientation) ([]string, error)
}

// providerRegistry holds registered providers, mirroring the model
// provider registry so cmd wiring is a blank import away.
var (
	providerRegistry = make(map[string]Provider)
	providerMu       sync.RWMutex
)

// RegisterProvider adds a provider to the registry.
func RegisterProvider(p Provider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerRegistry[p.Name()] = p
}

// GetProvider retrieves a provider by name, or nil.
func GetProvider(name string) Provider {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return providerRegistry[name]
}

// Chain consults providers in priority order and returns the first
// non-empty result.
type Chain struct {
	providers []Provider
	cache     *cache
	logger    *slog.Logger
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithCacheTTL sets how long results are served from cache.
func WithCacheTTL(ttl time.Duration) ChainOption {
	return func(c *Chain) {
		c.cache = newCache(ttl)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ChainOption {
	return func(c *Chain) {
		c.logger = logger
	}
}

// NewChain builds a chain from registered provider names. Unknown names
// are skipped so a missing API key degrades instead of failing startup.
func NewChain(names []string, opts ...ChainOption) *Chain {
	c := &Chain{
		cache:  newCache(time.Hour),
		logger: slog.Default(),
	}
	for _, name := range names {
		if p := GetProvider(name); p != nil {
			c.providers = append(c.providers, p)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchImages walks the provider chain. Each provider error is logged and
// swallowed; the caller only ever sees the final URL list.
func (c *Chain) FetchImages(ctx context.Context, keyword string, count int, orientation Orientation) []string {
	if keyword == "" || count <= 0 {
		return nil
	}

	key := keyword + "|" + string(orientation)
	if urls, ok := c.cache.get(key); ok {
		if len(urls) > count {
			return urls[:count]
		}
		return urls
	}

	for _, p := range c.providers {
		urls, err := p.Search(ctx, keyword, count, orientation)
		if err != nil {
			c.logger.Debug("Image provider failed, trying next",
				"provider", p.Name(),
				"keyword", keyword,
				"error", err)
			continue
		}
		if len(urls) > 0 {
			c.cache.put(key, urls)
			return urls
		}
	}

	return nil
}
