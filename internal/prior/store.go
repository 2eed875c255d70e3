// Package prior holds the user-declared prior-period positions blended into
// aggregation. The store is the only writer of this state.
package prior

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
)

// ErrNegativePrior rejects a patch carrying a negative price or quantity;
// prior positions are always long.
var ErrNegativePrior = errors.New("prior position price and quantity must be non-negative")

// Patch is a merge-patch for one ticker's prior position. Nil fields leave
// the stored value untouched.
type Patch struct {
	Price    *decimal.Decimal `json:"price"`
	Quantity *decimal.Decimal `json:"quantity"`
}

// Store maps ticker → prior position, updatable at any time by the caller.
type Store struct {
	mu      sync.RWMutex
	entries map[string]domain.PriorPosition
}

// NewStore creates an empty prior-position store.
func NewStore() *Store {
	return &Store{entries: make(map[string]domain.PriorPosition)}
}

// Apply merges a patch into the stored entry for the ticker and returns the
// merged result. Fields absent from the patch are preserved. A zero price
// over an existing non-zero price is ignored, so an accidental blank
// submission cannot erase a previously entered value; a zero quantity is
// applied normally.
func (s *Store) Apply(ticker string, patch Patch) (domain.PriorPosition, error) {
	if patch.Price != nil && patch.Price.IsNegative() {
		return domain.PriorPosition{}, ErrNegativePrior
	}
	if patch.Quantity != nil && patch.Quantity.IsNegative() {
		return domain.PriorPosition{}, ErrNegativePrior
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ticker]
	if !ok {
		entry = domain.PriorPosition{Ticker: ticker}
	}

	if patch.Price != nil && !(patch.Price.IsZero() && !entry.Price.IsZero()) {
		entry.Price = *patch.Price
	}
	if patch.Quantity != nil {
		entry.Quantity = *patch.Quantity
	}

	s.entries[ticker] = entry
	return entry, nil
}

// Get returns the stored prior position for a ticker, if any.
func (s *Store) Get(ticker string) (domain.PriorPosition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[ticker]
	return entry, ok
}

// Delete removes the prior position for a ticker.
func (s *Store) Delete(ticker string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, ticker)
}

// Snapshot copies the full map for an aggregation pass, so aggregation never
// reads the store concurrently with a patch.
func (s *Store) Snapshot() map[string]domain.PriorPosition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.PriorPosition, len(s.entries))
	for ticker, entry := range s.entries {
		out[ticker] = entry
	}
	return out
}
