// Package synthetic generates deterministic placeholder market data, used when
// the real upstream is capped, down, or intentionally disabled. Prices derive
// from the symbol itself plus a bounded jitter, so repeated calls for the same
// symbol always land in a fixed band around the same base.
package synthetic

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"stockfolio/internal/marketdata"
)

// symbols is the fixed candidate list Search filters over, in emission order.
var symbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}

// Generator produces synthetic quotes, search results, and company details.
type Generator struct {
	now    func() time.Time
	jitter func() float64
}

// New returns a Generator backed by the wall clock and uniform jitter.
func New() *Generator {
	return &Generator{
		now: time.Now,
		// uniform in [0.8, 1.2)
		jitter: func() float64 { return 0.8 + rand.Float64()*0.4 },
	}
}

// base is the deterministic anchor for a symbol: the sum of its byte values
// mod 1000.
func base(symbol string) float64 {
	sum := 0
	for i := 0; i < len(symbol); i++ {
		sum += int(symbol[i])
	}
	return float64(sum % 1000)
}

// Price returns a synthetic price for symbol: base times a jitter in
// [0.8, 1.2), rounded to cents. Successive calls differ but stay in band.
func (g *Generator) Price(symbol string) float64 {
	return math.Round(base(symbol)*g.jitter()*100) / 100
}

// QuoteFor returns a full synthetic quote derived from a single Price draw.
func (g *Generator) QuoteFor(symbol string) marketdata.Quote {
	price := g.Price(symbol)
	prev := price * 0.99
	change := price - prev
	var changePct float64
	if prev != 0 {
		changePct = change / prev * 100
	}
	return marketdata.Quote{
		Symbol:        symbol,
		CurrentPrice:  price,
		Change:        change,
		ChangePercent: changePct,
		HighPrice:     price * 1.02,
		LowPrice:      price * 0.98,
		OpenPrice:     price,
		PreviousClose: prev,
		Timestamp:     g.now().Unix(),
	}
}

// Search filters the fixed symbol list by case-insensitive substring match
// against the symbol, preserving list order.
func (g *Generator) Search(query string) []marketdata.SearchResult {
	q := strings.ToLower(query)
	out := make([]marketdata.SearchResult, 0, len(symbols))
	for _, sym := range symbols {
		if strings.Contains(strings.ToLower(sym), q) {
			out = append(out, marketdata.SearchResult{
				Symbol: sym,
				Name:   "Mock " + sym + " Company",
				Type:   "Equity",
			})
		}
	}
	return out
}

// Details returns the fixed company-details template for symbol.
func (g *Generator) Details(symbol string) marketdata.CompanyDetails {
	return marketdata.CompanyDetails{
		Symbol:      symbol,
		Name:        "Mock " + symbol + " Company",
		Sector:      "Technology",
		Industry:    "Software",
		MarketCap:   1_000_000_000,
		PERatio:     25,
		Description: "This is a mock description for " + symbol,
	}
}
