package portfolio

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultUserID owns portfolios created without authentication.
const DefaultUserID = "default-user"

// PriceSource supplies the current price for a symbol. This is the only
// market-data contract the portfolio side depends on.
//
//go:generate mockgen -package=portfolio_test -destination=mock_price_source_test.go -source=service.go PriceSource
type PriceSource interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// Service implements the portfolio operations over the store, revaluing
// holdings through the price source on every read and mutation.
type Service struct {
	store  *Store
	prices PriceSource
	log    zerolog.Logger
}

func NewService(store *Store, prices PriceSource, log zerolog.Logger) *Service {
	return &Service{store: store, prices: prices, log: log}
}

// Create adds an empty portfolio for the default user.
func (s *Service) Create(_ context.Context, name string) (Portfolio, error) {
	p := s.store.Create(name, DefaultUserID)
	s.log.Info().Int64("portfolio", p.ID).Str("name", name).Msg("portfolio created")
	return p, nil
}

// List returns the default user's portfolios with holdings revalued.
func (s *Service) List(ctx context.Context) ([]Portfolio, error) {
	out := s.store.List(DefaultUserID)
	for i := range out {
		if err := s.revalue(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Get returns the portfolio with holdings revalued.
func (s *Service) Get(ctx context.Context, id int64) (Portfolio, error) {
	p, ok := s.store.Get(id)
	if !ok {
		return Portfolio{}, ErrPortfolioNotFound
	}
	if err := s.revalue(ctx, &p); err != nil {
		return Portfolio{}, err
	}
	return p, nil
}

// Holdings returns the portfolio's holdings with current values refreshed.
func (s *Service) Holdings(ctx context.Context, id int64) ([]Holding, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Holdings, nil
}

// AddStock records a purchase. An existing holding for the symbol is merged:
// the quantity is added and the average price recomputed over both lots. The
// live price is fetched before the store lock; the mutation itself runs
// atomically under it, so concurrent adds to the same portfolio all survive.
func (s *Service) AddStock(ctx context.Context, portfolioID int64, symbol string, quantity int64, price float64) (Holding, error) {
	if quantity <= 0 {
		return Holding{}, ErrInvalidQuantity
	}
	if price <= 0 {
		return Holding{}, ErrInvalidPrice
	}
	live, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		return Holding{}, fmt.Errorf("price for %s: %w", symbol, err)
	}

	p, err := s.store.Update(portfolioID, func(p *Portfolio) error {
		idx := findHolding(p.Holdings, symbol)
		if idx >= 0 {
			h := &p.Holdings[idx]
			h.AveragePrice = mergeAveragePrice(h.Quantity, h.AveragePrice, quantity, price)
			h.Quantity += quantity
		} else {
			p.Holdings = append(p.Holdings, Holding{
				Symbol:       symbol,
				Quantity:     quantity,
				AveragePrice: price,
			})
			idx = len(p.Holdings) - 1
		}
		h := &p.Holdings[idx]
		h.CurrentValue = float64(h.Quantity) * live
		p.TotalValue = totalOf(p.Holdings)
		return nil
	})
	if err != nil {
		return Holding{}, err
	}
	s.log.Info().Int64("portfolio", portfolioID).Str("symbol", symbol).Int64("quantity", quantity).Msg("stock added")
	return p.Holdings[findHolding(p.Holdings, symbol)], nil
}

// RemoveStock deletes the holding for symbol entirely.
func (s *Service) RemoveStock(_ context.Context, portfolioID int64, symbol string) error {
	_, err := s.store.Update(portfolioID, func(p *Portfolio) error {
		idx := findHolding(p.Holdings, symbol)
		if idx < 0 {
			return ErrHoldingNotFound
		}
		p.Holdings = append(p.Holdings[:idx], p.Holdings[idx+1:]...)
		p.TotalValue = totalOf(p.Holdings)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Int64("portfolio", portfolioID).Str("symbol", symbol).Msg("stock removed")
	return nil
}

// ReduceStock decreases the holding's quantity. Reducing to zero removes the
// holding and returns nil; reducing below zero is rejected.
func (s *Service) ReduceStock(ctx context.Context, portfolioID int64, symbol string, quantity int64) (*Holding, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	live, err := s.prices.GetPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", symbol, err)
	}

	var removed bool
	p, err := s.store.Update(portfolioID, func(p *Portfolio) error {
		idx := findHolding(p.Holdings, symbol)
		if idx < 0 {
			return ErrHoldingNotFound
		}
		h := &p.Holdings[idx]
		if h.Quantity < quantity {
			return ErrInsufficientQuantity
		}
		h.Quantity -= quantity
		removed = h.Quantity == 0
		if removed {
			p.Holdings = append(p.Holdings[:idx], p.Holdings[idx+1:]...)
		} else {
			h.CurrentValue = float64(h.Quantity) * live
		}
		p.TotalValue = totalOf(p.Holdings)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("portfolio", portfolioID).Str("symbol", symbol).Int64("quantity", quantity).Msg("stock reduced")
	if removed {
		return nil, nil
	}
	out := p.Holdings[findHolding(p.Holdings, symbol)]
	return &out, nil
}

// revalue refreshes every holding's current value from the price source and
// recomputes the portfolio total.
func (s *Service) revalue(ctx context.Context, p *Portfolio) error {
	total := 0.0
	for i := range p.Holdings {
		h := &p.Holdings[i]
		price, err := s.prices.GetPrice(ctx, h.Symbol)
		if err != nil {
			return fmt.Errorf("price for %s: %w", h.Symbol, err)
		}
		h.CurrentValue = float64(h.Quantity) * price
		total += h.CurrentValue
	}
	p.TotalValue = total
	return nil
}

// totalOf sums the holdings' current values. Inside a mutation, siblings keep
// the value their own last mutation wrote; reads refresh everything anyway.
func totalOf(hs []Holding) float64 {
	var total float64
	for i := range hs {
		total += hs[i].CurrentValue
	}
	return total
}

// mergeAveragePrice computes the blended average over an existing lot and a
// new one. Decimal arithmetic keeps repeated merges from drifting.
func mergeAveragePrice(oldQty int64, oldAvg float64, newQty int64, newPrice float64) float64 {
	oldCost := decimal.NewFromFloat(oldAvg).Mul(decimal.NewFromInt(oldQty))
	newCost := decimal.NewFromFloat(newPrice).Mul(decimal.NewFromInt(newQty))
	avg := oldCost.Add(newCost).Div(decimal.NewFromInt(oldQty + newQty))
	f, _ := avg.Round(4).Float64()
	return f
}

func findHolding(hs []Holding, symbol string) int {
	for i := range hs {
		if hs[i].Symbol == symbol {
			return i
		}
	}
	return -1
}
