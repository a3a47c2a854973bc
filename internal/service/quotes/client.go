// Package quotes implements the quote-fetch collaborator over HTTP with a
// short-TTL cache in front of it.
package quotes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Hjcho123/PlusAlpha-sub001/internal/domain/models"
	drepo "github.com/Hjcho123/PlusAlpha-sub001/internal/domain/repository"
	"github.com/Hjcho123/PlusAlpha-sub001/pkg/cache"
	xhttp "github.com/Hjcho123/PlusAlpha-sub001/pkg/http"
)

// Client fetches quote snapshots from the quote API. Quotes are cached for a
// short TTL so a validating fetch immediately followed by a refresh cycle
// does not hit the API twice.
type Client struct {
	baseURL  string
	apiKey   string
	client   *xhttp.Client
	cache    cache.Service
	cacheTTL time.Duration
}

// Option configures Client.
type Option func(*Client)

// WithCache sets the quote cache and TTL.
func WithCache(c cache.Service, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		cl.cacheTTL = ttl
	}
}

// New creates a quote fetch client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) drepo.QuoteFetcher {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the current quote snapshot for symbol. A response carrying a
// non-positive price is rejected as invalid.
func (c *Client) Fetch(ctx context.Context, symbol string) (*models.Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol empty")
	}
	symbol = strings.ToUpper(symbol)

	if c.cache != nil {
		var cached models.Quote
		if err := c.cache.Get(ctx, cacheKey(symbol), &cached); err == nil {
			return &cached, nil
		}
	}

	var q models.Quote
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/quote",
		QueryParams: map[string]string{"symbol": symbol, "token": c.apiKey},
	}, &q)
	if err != nil {
		return nil, fmt.Errorf("fetch quote %s: %w", symbol, err)
	}

	if q.Price <= 0 {
		return nil, fmt.Errorf("fetch quote %s: invalid price %v", symbol, q.Price)
	}
	if q.Symbol == "" {
		q.Symbol = symbol
	}
	if q.LastUpdated.IsZero() {
		q.LastUpdated = time.Now()
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, cacheKey(symbol), &q, c.cacheTTL)
	}
	return &q, nil
}

func cacheKey(symbol string) string {
	return "quote:" + symbol
}
