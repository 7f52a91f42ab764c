// Package portfolio holds the portfolio CRUD domain: portfolios of stock
// holdings, an in-memory store, and a service that keeps holding values
// current through a market-data price source.
package portfolio

import "errors"

var (
	ErrPortfolioNotFound    = errors.New("portfolio not found")
	ErrHoldingNotFound      = errors.New("stock not found in portfolio")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInsufficientQuantity = errors.New("cannot reduce more than available quantity")
)

// Holding is one stock position inside a portfolio.
type Holding struct {
	ID           int64   `json:"id"`
	Symbol       string  `json:"symbol"`
	Quantity     int64   `json:"quantity"`
	AveragePrice float64 `json:"averagePrice"`
	CurrentValue float64 `json:"currentValue"`
	PortfolioID  int64   `json:"portfolioId"`
}

// Portfolio is a named collection of holdings. TotalValue is recomputed from
// live prices whenever the portfolio is read or mutated.
type Portfolio struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	UserID     string    `json:"userId"`
	Holdings   []Holding `json:"holdings"`
	TotalValue float64   `json:"totalValue"`
}
