package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"
)

// Fetcher downloads the registrant directory from the regulator.
type Fetcher interface {
	FetchDirectory(ctx context.Context) ([]Registrant, error)
}

// Repository is optional persistent storage for the directory, so a restart
// starts warm instead of waiting for the first scrape.
type Repository interface {
	SaveAll(ctx context.Context, registrants []Registrant) error
	LoadAll(ctx context.Context) ([]Registrant, error)
}

// Service answers institution-name → CNPJ lookups from an in-memory copy of
// the registrant directory. Lookups degrade gracefully: an empty or stale
// directory simply misses, and disclosure lines omit the CNPJ segment.
type Service struct {
	fetcher Fetcher
	repo    Repository // optional

	mu     sync.RWMutex
	byName map[string]string // normalized name → formatted CNPJ
}

// NewService creates a registry Service. repo may be nil.
func NewService(fetcher Fetcher, repo Repository) *Service {
	return &Service{
		fetcher: fetcher,
		repo:    repo,
		byName:  make(map[string]string),
	}
}

// RefreshDirectory fetches the directory and replaces the in-memory index.
// When a repository is configured the fetched rows are persisted as well;
// a persistence failure is logged but does not fail the refresh.
func (s *Service) RefreshDirectory(ctx context.Context) error {
	registrants, err := s.fetcher.FetchDirectory(ctx)
	if err != nil {
		return fmt.Errorf("refreshing registrant directory: %w", err)
	}

	s.replaceIndex(registrants)

	if s.repo != nil {
		if err := s.repo.SaveAll(ctx, registrants); err != nil {
			slog.Warn("registry: failed to persist directory", "error", err)
		}
	}

	slog.Info("registry: directory refreshed", "registrants", len(registrants))
	return nil
}

// WarmFromRepository loads a previously persisted directory into the index.
// A missing repository or an empty table is not an error.
func (s *Service) WarmFromRepository(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	registrants, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading persisted registrant directory: %w", err)
	}
	if len(registrants) == 0 {
		return nil
	}

	s.replaceIndex(registrants)
	slog.Info("registry: directory warmed from storage", "registrants", len(registrants))
	return nil
}

// Lookup resolves an institution name to its formatted CNPJ. Both sides are
// normalized before the exact comparison.
func (s *Service) Lookup(name string) (string, bool) {
	key := NormalizeName(name)
	if key == "" {
		return "", false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cnpj, ok := s.byName[key]
	return cnpj, ok
}

func (s *Service) replaceIndex(registrants []Registrant) {
	index := lo.SliceToMap(registrants, func(r Registrant) (string, string) {
		return NormalizeName(r.Name), r.CNPJ
	})
	delete(index, "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName = index
}
