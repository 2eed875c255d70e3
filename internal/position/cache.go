package position

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
)

// cache memoizes aggregation results, keyed by a content hash of the exact
// inputs. A changed transaction set or prior map changes the key, so stale
// entries are simply never hit again.
type cache struct {
	mu      sync.RWMutex
	entries map[string][]domain.Position
}

func newCache() *cache {
	return &cache{entries: make(map[string][]domain.Position)}
}

func (c *cache) get(key string) ([]domain.Position, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	positions, ok := c.entries[key]
	return positions, ok
}

func (c *cache) set(key string, positions []domain.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = positions
}

// fingerprint hashes the full aggregation input: transaction list in order,
// prior positions in ticker order, and the quantity policy.
func fingerprint(txs []domain.Transaction, priors map[string]domain.PriorPosition, policy QuantityPolicy) string {
	h := sha256.New()
	fmt.Fprintf(h, "policy=%s\n", policy)

	for _, tx := range txs {
		fmt.Fprintf(h, "tx|%s|%s|%s|%s|%s|%s|%s|%s|%s\n",
			tx.Ticker, tx.Date, tx.Institution, tx.Market, tx.Maturity,
			tx.Price, tx.Quantity, tx.Kind, tx.Value)
	}

	tickers := make([]string, 0, len(priors))
	for ticker := range priors {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	for _, ticker := range tickers {
		p := priors[ticker]
		fmt.Fprintf(h, "prior|%s|%s|%s\n", ticker, p.Price, p.Quantity)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Service wraps Aggregate with the configured quantity policy and the
// content-addressed memo cache.
type Service struct {
	policy QuantityPolicy
	cache  *cache
}

// NewService creates an aggregation service.
func NewService(policy QuantityPolicy) *Service {
	return &Service{policy: policy, cache: newCache()}
}

// Policy reports the configured quantity policy.
func (s *Service) Policy() QuantityPolicy {
	return s.policy
}

// Aggregate computes (or replays) the position list for the given inputs.
func (s *Service) Aggregate(txs []domain.Transaction, priors map[string]domain.PriorPosition) []domain.Position {
	key := fingerprint(txs, priors, s.policy)
	if positions, ok := s.cache.get(key); ok {
		return positions
	}

	positions := Aggregate(txs, priors, s.policy)
	s.cache.set(key, positions)
	return positions
}
