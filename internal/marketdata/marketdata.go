package marketdata

// Quote is the normalized snapshot returned for a symbol. A new value is
// produced per request and never mutated afterwards.
type Quote struct {
	Symbol        string  `json:"symbol"`
	CurrentPrice  float64 `json:"currentPrice"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	HighPrice     float64 `json:"highPrice"`
	LowPrice      float64 `json:"lowPrice"`
	OpenPrice     float64 `json:"openPrice"`
	PreviousClose float64 `json:"previousClose"`
	// Timestamp is seconds since epoch.
	Timestamp int64 `json:"timestamp"`
}

// SearchResult is a single symbol-search match. Sequences preserve the order
// the upstream returned them in.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// NotAvailable is the sentinel used for CompanyDetails fields the upstream
// did not populate.
const NotAvailable = "N/A"

// CompanyDetails describes a company behind a symbol. Missing upstream fields
// are filled with NotAvailable (strings) or zero (numbers), never left unset.
type CompanyDetails struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Sector      string  `json:"sector"`
	Industry    string  `json:"industry"`
	MarketCap   float64 `json:"marketCap"`
	PERatio     float64 `json:"peRatio"`
	Description string  `json:"description"`
}
