package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockfolio/internal/marketdata"
	"stockfolio/internal/portfolio"
)

func (s *Server) listPortfolios(c *gin.Context) {
	ps, err := s.deps.Portfolios.List(c.Request.Context())
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, ps)
}

func (s *Server) createPortfolio(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	p, err := s.deps.Portfolios.Create(c.Request.Context(), name)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getPortfolio(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := s.deps.Portfolios.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getHoldings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	hs, err := s.deps.Portfolios.Holdings(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, hs)
}

func (s *Server) addStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	symbol := c.Query("symbol")
	quantity, qerr := strconv.ParseInt(c.Query("quantity"), 10, 64)
	price, perr := strconv.ParseFloat(c.Query("price"), 64)
	if symbol == "" || qerr != nil || perr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol, quantity and price are required"})
		return
	}
	h, err := s.deps.Portfolios.AddStock(c.Request.Context(), id, symbol, quantity, price)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h)
}

func (s *Server) removeStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := s.deps.Portfolios.RemoveStock(c.Request.Context(), id, c.Param("symbol")); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) reduceStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	quantity, err := strconv.ParseInt(c.Query("quantity"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}
	h, rerr := s.deps.Portfolios.ReduceStock(c.Request.Context(), id, c.Param("symbol"), quantity)
	if rerr != nil {
		s.renderError(c, rerr)
		return
	}
	if h == nil {
		// reduced to zero, holding removed
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) searchStocks(c *gin.Context) {
	rs, err := s.deps.Market.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, rs)
}

func (s *Server) getPrice(c *gin.Context) {
	symbol := c.Param("symbol")
	price, err := s.deps.Market.GetPrice(c.Request.Context(), symbol)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": symbol, "price": price})
}

func (s *Server) getQuote(c *gin.Context) {
	q, err := s.deps.Market.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) getDetails(c *gin.Context) {
	d, err := s.deps.Market.GetDetails(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) getDataMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"useSyntheticData": s.deps.Mode.Synthetic()})
}

func (s *Server) toggleDataMode(c *gin.Context) {
	v := s.deps.Mode.Toggle()
	s.deps.Log.Info().Bool("useSyntheticData", v).Msg("data mode toggled")
	c.JSON(http.StatusOK, gin.H{"useSyntheticData": v})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid portfolio id"})
		return 0, false
	}
	return id, true
}

func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, portfolio.ErrPortfolioNotFound), errors.Is(err, portfolio.ErrHoldingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, portfolio.ErrInvalidQuantity),
		errors.Is(err, portfolio.ErrInvalidPrice),
		errors.Is(err, portfolio.ErrInsufficientQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch marketdata.KindOf(err) {
	case marketdata.KindAuth:
		// misconfiguration is surfaced, never masked with synthetic data
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream authentication failed"})
	case marketdata.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not found"})
	default:
		s.deps.Log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
