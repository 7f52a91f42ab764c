// Package client orchestrates market-data access: a data-mode gate, search
// caching, request spacing, bounded retry on throttling, and a synthetic
// fallback that keeps price and quote lookups always answerable.
package client

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"stockfolio/internal/marketdata"
	"stockfolio/internal/marketdata/cache"
	"stockfolio/internal/marketdata/ratelimit"
	"stockfolio/internal/marketdata/retry"
	"stockfolio/internal/marketdata/synthetic"
)

// API is the upstream surface the client drives.
//
//go:generate mockgen -package=client_test -destination=mock_api_test.go -source=client.go API
type API interface {
	Quote(ctx context.Context, symbol string) (marketdata.Quote, error)
	Search(ctx context.Context, query string) ([]marketdata.SearchResult, error)
	Profile(ctx context.Context, symbol string) (marketdata.CompanyDetails, error)
}

// Client is the market-data access layer. One instance is shared by all
// concurrent callers; the limiter and cache it owns are internally
// synchronized.
type Client struct {
	api  API
	mode *marketdata.Mode
	gen  *synthetic.Generator
	log  zerolog.Logger

	limiter *ratelimit.Limiter
	cache   *cache.SearchCache
	group   singleflight.Group

	attempts   int
	retryDelay time.Duration

	// construction-time knobs
	minInterval time.Duration
	cacheTTL    time.Duration
}

// Option is a configuration option for the Client.
type Option func(*Client)

// WithLogger sets the diagnostic logger. It records which path (real, cached,
// synthetic) served each call; callers never see the distinction in the
// success value itself.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMinInterval sets the minimum spacing between upstream requests.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.minInterval = d }
}

// WithCacheTTL sets how long search results stay cached.
func WithCacheTTL(d time.Duration) Option {
	return func(c *Client) { c.cacheTTL = d }
}

// WithRetry sets the total attempt cap and the fixed delay between attempts
// for rate-limited failures.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// New creates a Client over api, gated by mode.
func New(api API, mode *marketdata.Mode, opts ...Option) *Client {
	c := &Client{
		api:         api,
		mode:        mode,
		gen:         synthetic.New(),
		log:         zerolog.Nop(),
		attempts:    retry.DefaultAttempts,
		retryDelay:  retry.DefaultDelay,
		minInterval: ratelimit.DefaultInterval,
		cacheTTL:    cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.limiter = ratelimit.New(c.minInterval)
	c.cache = cache.New(c.cacheTTL)
	return c
}

// GetPrice returns the current price for symbol. It never fails except on an
// auth misconfiguration: any other upstream failure is masked by a synthetic
// price so a dashboard always has something to render.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if c.mode.Synthetic() {
		c.logServed("price", symbol, "synthetic")
		return c.gen.Price(symbol), nil
	}
	q, err := c.fetchQuote(ctx, symbol)
	if err != nil {
		if marketdata.KindOf(err) == marketdata.KindAuth {
			return 0, err
		}
		c.logFallback("price", symbol, err)
		return c.gen.Price(symbol), nil
	}
	c.logServed("price", symbol, "upstream")
	return q.CurrentPrice, nil
}

// GetQuote returns the full quote for symbol, with the same fallback policy
// as GetPrice.
func (c *Client) GetQuote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	if c.mode.Synthetic() {
		c.logServed("quote", symbol, "synthetic")
		return c.gen.QuoteFor(symbol), nil
	}
	q, err := c.fetchQuote(ctx, symbol)
	if err != nil {
		if marketdata.KindOf(err) == marketdata.KindAuth {
			return marketdata.Quote{}, err
		}
		c.logFallback("quote", symbol, err)
		return c.gen.QuoteFor(symbol), nil
	}
	c.logServed("quote", symbol, "upstream")
	return q, nil
}

// GetDetails returns company details for symbol. Auth failures and unknown
// symbols surface to the caller; every other failure falls back to the
// synthetic template.
func (c *Client) GetDetails(ctx context.Context, symbol string) (marketdata.CompanyDetails, error) {
	if c.mode.Synthetic() {
		c.logServed("details", symbol, "synthetic")
		return c.gen.Details(symbol), nil
	}
	if err := c.limiter.Acquire(ctx); err != nil {
		return marketdata.CompanyDetails{}, marketdata.E(marketdata.KindTransport, "client.GetDetails", err)
	}
	var d marketdata.CompanyDetails
	err := retry.Do(ctx, c.attempts, c.retryDelay, marketdata.IsRateLimited, func(ctx context.Context) error {
		var err error
		d, err = c.api.Profile(ctx, symbol)
		return err
	})
	if err != nil {
		switch marketdata.KindOf(err) {
		case marketdata.KindAuth, marketdata.KindNotFound:
			return marketdata.CompanyDetails{}, err
		}
		c.logFallback("details", symbol, err)
		return c.gen.Details(symbol), nil
	}
	c.logServed("details", symbol, "upstream")
	return d, nil
}

// Search returns symbol matches for query. A blank query short-circuits to an
// empty result without touching the cache, the limiter, or the upstream.
// Concurrent identical misses share one upstream call; successful upstream
// results populate the cache under the exact query string.
func (c *Client) Search(ctx context.Context, query string) ([]marketdata.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []marketdata.SearchResult{}, nil
	}
	if c.mode.Synthetic() {
		c.logServed("search", query, "synthetic")
		return c.gen.Search(query), nil
	}
	if rs, ok := c.cache.Get(query); ok {
		c.logServed("search", query, "cache")
		return rs, nil
	}

	// The flight is detached from the leader's ctx so a canceled leader never
	// poisons coalesced callers; the upstream client's own timeout still
	// bounds the call. Each caller waits under its own ctx.
	ch := c.group.DoChan(query, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		if err := c.limiter.Acquire(fctx); err != nil {
			return nil, marketdata.E(marketdata.KindTransport, "client.Search", err)
		}
		var rs []marketdata.SearchResult
		err := retry.Do(fctx, c.attempts, c.retryDelay, marketdata.IsRateLimited, func(ctx context.Context) error {
			var err error
			rs, err = c.api.Search(ctx, query)
			return err
		})
		if err != nil {
			return nil, err
		}
		c.cache.Put(query, rs)
		return rs, nil
	})

	var (
		v      any
		err    error
		shared bool
	)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		v, err, shared = res.Val, res.Err, res.Shared
	}
	if err != nil {
		switch marketdata.KindOf(err) {
		case marketdata.KindAuth, marketdata.KindNotFound:
			return nil, err
		}
		c.logFallback("search", query, err)
		return c.gen.Search(query), nil
	}
	if shared {
		c.logServed("search", query, "coalesced")
	} else {
		c.logServed("search", query, "upstream")
	}
	return v.([]marketdata.SearchResult), nil
}

// fetchQuote runs the limiter-gated, retry-wrapped quote call. The limiter is
// acquired once per call; retries are spaced by the fixed retry delay alone.
func (c *Client) fetchQuote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return marketdata.Quote{}, marketdata.E(marketdata.KindTransport, "client.fetchQuote", err)
	}
	var q marketdata.Quote
	err := retry.Do(ctx, c.attempts, c.retryDelay, marketdata.IsRateLimited, func(ctx context.Context) error {
		var err error
		q, err = c.api.Quote(ctx, symbol)
		return err
	})
	return q, err
}

func (c *Client) logServed(op, key, source string) {
	c.log.Debug().Str("op", op).Str("key", key).Str("source", source).Msg("market data served")
}

func (c *Client) logFallback(op, key string, err error) {
	c.log.Warn().Str("op", op).Str("key", key).Err(err).Msg("upstream failed, serving synthetic data")
}
