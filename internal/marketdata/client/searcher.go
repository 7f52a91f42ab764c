package client

import (
	"context"
	"errors"
	"sync/atomic"

	"stockfolio/internal/marketdata"
)

// ErrSuperseded is returned by Searcher.Search when a newer query was issued
// before this one resolved.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Searcher wraps Client.Search with last-request-wins semantics for
// user-driven search (rapid typing): only the most recently issued query's
// result is observed. A superseded call still completes underneath and may
// populate the cache, but its result is discarded on arrival.
type Searcher struct {
	c   *Client
	seq atomic.Uint64
}

// NewSearcher returns a Searcher over c.
func NewSearcher(c *Client) *Searcher {
	return &Searcher{c: c}
}

// Search issues the query and returns its results unless a newer Search call
// started in the meantime, in which case it returns ErrSuperseded.
func (s *Searcher) Search(ctx context.Context, query string) ([]marketdata.SearchResult, error) {
	mine := s.seq.Add(1)
	rs, err := s.c.Search(ctx, query)
	if s.seq.Load() != mine {
		return nil, ErrSuperseded
	}
	return rs, err
}
