// Package server exposes the portfolio and market-data operations over REST.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"stockfolio/internal/marketdata"
	"stockfolio/internal/portfolio"
)

// MarketData is the market-data surface the handlers depend on.
type MarketData interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetQuote(ctx context.Context, symbol string) (marketdata.Quote, error)
	Search(ctx context.Context, query string) ([]marketdata.SearchResult, error)
	GetDetails(ctx context.Context, symbol string) (marketdata.CompanyDetails, error)
}

// Deps are the collaborators the server wires handlers to.
type Deps struct {
	Portfolios *portfolio.Service
	Market     MarketData
	Mode       *marketdata.Mode
	Log        zerolog.Logger
	// RateLimitRPS throttles each client IP; 0 disables the middleware.
	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the HTTP API.
type Server struct {
	deps   Deps
	engine *gin.Engine
}

// New builds the router with middleware and all routes registered.
func New(deps Deps) *Server {
	engine := gin.New()
	engine.Use(Recovery(deps.Log), RequestLogger(deps.Log), CORS())
	if deps.RateLimitRPS > 0 {
		burst := deps.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		engine.Use(ClientRateLimiter(deps.RateLimitRPS, burst))
	}

	s := &Server{deps: deps, engine: engine}

	engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := engine.Group("/api")
	{
		api.GET("/portfolios", s.listPortfolios)
		api.POST("/portfolios", s.createPortfolio)
		api.GET("/portfolios/:id", s.getPortfolio)
		api.GET("/portfolios/:id/holdings", s.getHoldings)
		api.POST("/portfolios/:id/stocks", s.addStock)
		api.DELETE("/portfolios/:id/stocks/:symbol", s.removeStock)
		api.POST("/portfolios/:id/stocks/:symbol/reduce", s.reduceStock)

		api.GET("/stocks/search", s.searchStocks)
		api.GET("/stocks/:symbol/price", s.getPrice)
		api.GET("/stocks/:symbol/quote", s.getQuote)
		api.GET("/stocks/:symbol/details", s.getDetails)

		api.GET("/datamode", s.getDataMode)
		api.POST("/datamode/toggle", s.toggleDataMode)
	}
	return s
}

// Handler returns the router for an http.Server.
func (s *Server) Handler() http.Handler { return s.engine }
