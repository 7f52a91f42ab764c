// Package upstream is the HTTP client for the financial data provider. It
// maps the provider's responses to the normalized marketdata types and
// classifies every failure at the boundary, so callers can branch on the
// error kind alone.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockfolio/internal/marketdata"
)

const (
	defaultBaseURL = "https://finnhub.io/api/v1"
	defaultTimeout = 10 * time.Second
)

// Client calls the upstream provider. It performs no rate limiting, caching,
// or retries; those are layered on by the market-data client.
type Client struct {
	rc *resty.Client
}

type options struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// Option is a configuration option for the upstream client.
type Option func(*options)

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) { o.timeout = timeout }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) { o.httpClient = httpClient }
}

// New creates an upstream client. The API key is sent as the token query
// parameter on every request.
func New(apiKey string, opts ...Option) *Client {
	o := &options{baseURL: defaultBaseURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(o)
	}

	var rc *resty.Client
	if o.httpClient != nil {
		rc = resty.NewWithClient(o.httpClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(o.baseURL).
		SetTimeout(o.timeout).
		SetQueryParam("token", apiKey).
		SetHeaders(map[string]string{
			"Accept":     "application/json",
			"User-Agent": "stockfolio/1.0",
		})

	return &Client{rc: rc}
}

type quoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Quote fetches the current quote for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (marketdata.Quote, error) {
	const op = "upstream.Quote"
	var qr quoteResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&qr).
		Get("/quote")
	if cerr := classify(op, resp, err); cerr != nil {
		return marketdata.Quote{}, cerr
	}
	if qr.Current == 0 {
		return marketdata.Quote{}, marketdata.E(marketdata.KindParse, op, errors.New("no price data available"))
	}
	return marketdata.Quote{
		Symbol:        symbol,
		CurrentPrice:  qr.Current,
		Change:        qr.Change,
		ChangePercent: qr.ChangePercent,
		HighPrice:     qr.High,
		LowPrice:      qr.Low,
		OpenPrice:     qr.Open,
		PreviousClose: qr.PreviousClose,
		Timestamp:     qr.Timestamp,
	}, nil
}

type searchResponse struct {
	Count  int `json:"count"`
	Result []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"result"`
}

// Search fetches symbol matches for query, in the provider's order.
func (c *Client) Search(ctx context.Context, query string) ([]marketdata.SearchResult, error) {
	const op = "upstream.Search"
	var sr searchResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetResult(&sr).
		Get("/search")
	if cerr := classify(op, resp, err); cerr != nil {
		return nil, cerr
	}
	out := make([]marketdata.SearchResult, 0, len(sr.Result))
	for _, r := range sr.Result {
		out = append(out, marketdata.SearchResult{
			Symbol: r.Symbol,
			Name:   r.Description,
			Type:   r.Type,
		})
	}
	return out, nil
}

type profileResponse struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	Type      string  `json:"type"`
	Sector    string  `json:"sector"`
	Industry  string  `json:"industry"`
	MarketCap float64 `json:"marketCap"`
	PERatio   float64 `json:"peRatio"`
	Desc      string  `json:"description"`
}

// Profile fetches company details for symbol. Sector and industry are only
// populated for common stock; every missing field gets an explicit sentinel.
// An empty profile body means the provider does not know the symbol.
func (c *Client) Profile(ctx context.Context, symbol string) (marketdata.CompanyDetails, error) {
	const op = "upstream.Profile"
	var pr profileResponse
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetResult(&pr).
		Get("/stock/profile")
	if cerr := classify(op, resp, err); cerr != nil {
		return marketdata.CompanyDetails{}, cerr
	}
	if pr.Name == "" && pr.Ticker == "" {
		return marketdata.CompanyDetails{}, marketdata.E(marketdata.KindNotFound, op, fmt.Errorf("no profile for %q", symbol))
	}

	d := marketdata.CompanyDetails{
		Symbol:      symbol,
		Name:        orNA(pr.Name),
		Sector:      marketdata.NotAvailable,
		Industry:    marketdata.NotAvailable,
		MarketCap:   pr.MarketCap,
		PERatio:     pr.PERatio,
		Description: orNA(pr.Desc),
	}
	if strings.EqualFold(pr.Type, "Common Stock") {
		d.Sector = orNA(pr.Sector)
		d.Industry = orNA(pr.Industry)
	}
	return d, nil
}

func orNA(s string) string {
	if s == "" {
		return marketdata.NotAvailable
	}
	return s
}

// classify maps a resty outcome to a marketdata error kind. Undecodable
// bodies are parse failures, everything else that went wrong on the wire is
// transport, and non-2xx statuses map per the upstream contract.
func classify(op string, resp *resty.Response, err error) error {
	if err != nil {
		var syn *json.SyntaxError
		var typ *json.UnmarshalTypeError
		if errors.As(err, &syn) || errors.As(err, &typ) {
			return marketdata.E(marketdata.KindParse, op, err)
		}
		return marketdata.E(marketdata.KindTransport, op, err)
	}
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return marketdata.E(marketdata.KindAuth, op, fmt.Errorf("status %d", code))
	case code == http.StatusTooManyRequests:
		return marketdata.E(marketdata.KindRateLimited, op, fmt.Errorf("status %d", code))
	case code == http.StatusNotFound:
		return marketdata.E(marketdata.KindNotFound, op, fmt.Errorf("status %d", code))
	default:
		return marketdata.E(marketdata.KindTransport, op, fmt.Errorf("unexpected status %d", code))
	}
}
