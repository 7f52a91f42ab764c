// Command fetch runs one market-data operation from the command line and
// prints the result as JSON. Useful for poking at the upstream (or the
// synthetic generator) without the server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"stockfolio/internal/config"
	"stockfolio/internal/httpx"
	"stockfolio/internal/marketdata"
	"stockfolio/internal/marketdata/client"
	"stockfolio/internal/marketdata/upstream"
)

func main() {
	var (
		op         string
		symbol     string
		query      string
		synthetic  bool
		configPath string
		timeout    int
	)
	flag.StringVar(&op, "op", "price", "operation: price | quote | search | details")
	flag.StringVar(&symbol, "symbol", "AAPL", "stock symbol")
	flag.StringVar(&query, "q", "", "search query (op=search)")
	flag.BoolVar(&synthetic, "synthetic", false, "force synthetic data, never hit the upstream")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (overrides config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if timeout > 0 {
		cfg.Market.RequestTimeoutSec = timeout
	}
	if synthetic {
		cfg.Market.UseSyntheticData = true
	}

	mode := marketdata.NewMode(cfg.Market.UseSyntheticData)
	api := upstream.New(cfg.Market.APIKey,
		upstream.WithBaseURL(cfg.Market.BaseURL),
		upstream.WithTimeout(time.Duration(cfg.Market.RequestTimeoutSec)*time.Second),
		upstream.WithHTTPClient(httpx.New(time.Duration(cfg.Market.RequestTimeoutSec)*time.Second)),
	)
	md := client.New(api, mode,
		client.WithLogger(zerolog.New(os.Stderr).Level(zerolog.WarnLevel)),
		client.WithMinInterval(time.Duration(cfg.Market.MinRequestIntervalMS)*time.Millisecond),
		client.WithCacheTTL(time.Duration(cfg.Market.SearchCacheTTLSec)*time.Second),
		client.WithRetry(cfg.Market.MaxRetries, time.Duration(cfg.Market.RateLimitDelayMS)*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var out any
	switch op {
	case "price":
		out, err = priceResult(ctx, md, symbol)
	case "quote":
		out, err = md.GetQuote(ctx, symbol)
	case "search":
		out, err = md.Search(ctx, query)
	case "details":
		out, err = md.GetDetails(ctx, symbol)
	default:
		fmt.Fprintf(os.Stderr, "unknown op %q\n", op)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "fetch:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func priceResult(ctx context.Context, md *client.Client, symbol string) (any, error) {
	p, err := md.GetPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return map[string]any{"symbol": symbol, "price": p}, nil
}
