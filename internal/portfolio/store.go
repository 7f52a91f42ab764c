package portfolio

import (
	"sort"
	"sync"
)

// Store is a mutex-guarded in-memory portfolio store. It hands out deep
// copies, so callers can mutate what they get and persist through Save.
type Store struct {
	mu            sync.Mutex
	portfolios    map[int64]Portfolio
	nextID        int64
	nextHoldingID int64
}

func NewStore() *Store {
	return &Store{portfolios: make(map[int64]Portfolio)}
}

// Create adds an empty portfolio and returns it.
func (s *Store) Create(name, userID string) Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := Portfolio{ID: s.nextID, Name: name, UserID: userID, Holdings: []Holding{}}
	s.portfolios[p.ID] = p
	return p
}

// Get returns a copy of the portfolio with the given id.
func (s *Store) Get(id int64) (Portfolio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[id]
	if !ok {
		return Portfolio{}, false
	}
	return copyPortfolio(p), true
}

// List returns copies of every portfolio owned by userID, ordered by id.
func (s *Store) List(userID string) []Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Portfolio, 0, len(s.portfolios))
	for _, p := range s.portfolios {
		if p.UserID == userID {
			out = append(out, copyPortfolio(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Save replaces the stored record for p.ID, assigning ids to any new
// holdings, and returns the stored copy. Save alone cannot make a
// read-modify-write atomic; mutations built on a prior Get must go through
// Update instead.
func (s *Store) Save(p Portfolio) (Portfolio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.portfolios[p.ID]; !ok {
		return Portfolio{}, false
	}
	s.assignHoldingIDs(&p)
	s.portfolios[p.ID] = copyPortfolio(p)
	return copyPortfolio(p), true
}

// Update runs fn against the current record for id and persists the result,
// all under the store lock, so concurrent updates of the same portfolio never
// overwrite each other. fn gets a copy; returning an error discards it. fn
// must not call back into the store.
func (s *Store) Update(id int64, fn func(*Portfolio) error) (Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[id]
	if !ok {
		return Portfolio{}, ErrPortfolioNotFound
	}
	cp := copyPortfolio(p)
	if err := fn(&cp); err != nil {
		return Portfolio{}, err
	}
	s.assignHoldingIDs(&cp)
	s.portfolios[id] = copyPortfolio(cp)
	return cp, nil
}

// assignHoldingIDs gives ids to new holdings and stamps the owner. Caller
// holds mu.
func (s *Store) assignHoldingIDs(p *Portfolio) {
	for i := range p.Holdings {
		if p.Holdings[i].ID == 0 {
			s.nextHoldingID++
			p.Holdings[i].ID = s.nextHoldingID
		}
		p.Holdings[i].PortfolioID = p.ID
	}
}

func copyPortfolio(p Portfolio) Portfolio {
	cp := p
	cp.Holdings = make([]Holding, len(p.Holdings))
	copy(cp.Holdings, p.Holdings)
	return cp
}
