package registry

import (
	"context"
	"errors"
	"testing"
)

type mockFetcher struct {
	registrants []Registrant
	err         error
	calls       int
}

func (m *mockFetcher) FetchDirectory(_ context.Context) ([]Registrant, error) {
	m.calls++
	return m.registrants, m.err
}

type mockRepo struct {
	saved  []Registrant
	stored []Registrant
}

func (m *mockRepo) SaveAll(_ context.Context, registrants []Registrant) error {
	m.saved = registrants
	return nil
}

func (m *mockRepo) LoadAll(_ context.Context) ([]Registrant, error) {
	return m.stored, nil
}

func TestLookupAfterRefresh(t *testing.T) {
	fetcher := &mockFetcher{registrants: []Registrant{
		{Name: "NU INVEST CORRETORA DE VALORES S.A.", CNPJ: "62.169.875/0001-79"},
		{Name: "XP INVESTIMENTOS CCTVM S.A.", CNPJ: "02.332.886/0001-04"},
	}}
	svc := NewService(fetcher, nil)

	if err := svc.RefreshDirectory(context.Background()); err != nil {
		t.Fatalf("RefreshDirectory() error = %v", err)
	}

	tests := []struct {
		name     string
		query    string
		wantCNPJ string
		wantOK   bool
	}{
		{"exact", "NU INVEST CORRETORA DE VALORES S.A.", "62.169.875/0001-79", true},
		{"case and punctuation insensitive", "nu invest corretora de valores sa", "62.169.875/0001-79", true},
		{"extra spacing", "  XP INVESTIMENTOS C.C.T.V.M. S.A.  ", "02.332.886/0001-04", true},
		{"unknown", "CORRETORA INEXISTENTE", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cnpj, ok := svc.Lookup(tt.query)
			if ok != tt.wantOK || cnpj != tt.wantCNPJ {
				t.Errorf("Lookup(%q) = %q, %v, want %q, %v", tt.query, cnpj, ok, tt.wantCNPJ, tt.wantOK)
			}
		})
	}
}

func TestLookupBeforeRefreshMisses(t *testing.T) {
	svc := NewService(&mockFetcher{}, nil)
	if _, ok := svc.Lookup("NU INVEST"); ok {
		t.Error("Lookup() on an empty directory must miss, not fail")
	}
}

func TestRefreshDirectoryFetchError(t *testing.T) {
	wantErr := errors.New("boom")
	svc := NewService(&mockFetcher{err: wantErr}, nil)

	if err := svc.RefreshDirectory(context.Background()); !errors.Is(err, wantErr) {
		t.Errorf("RefreshDirectory() error = %v, want wrapped fetch error", err)
	}
}

func TestRefreshDirectoryPersists(t *testing.T) {
	fetcher := &mockFetcher{registrants: []Registrant{{Name: "NU INVEST", CNPJ: "62.169.875/0001-79"}}}
	repo := &mockRepo{}
	svc := NewService(fetcher, repo)

	if err := svc.RefreshDirectory(context.Background()); err != nil {
		t.Fatalf("RefreshDirectory() error = %v", err)
	}
	if len(repo.saved) != 1 {
		t.Errorf("persisted %d registrants, want 1", len(repo.saved))
	}
}

func TestWarmFromRepository(t *testing.T) {
	repo := &mockRepo{stored: []Registrant{{Name: "NU INVEST", CNPJ: "62.169.875/0001-79"}}}
	svc := NewService(&mockFetcher{}, repo)

	if err := svc.WarmFromRepository(context.Background()); err != nil {
		t.Fatalf("WarmFromRepository() error = %v", err)
	}
	if cnpj, ok := svc.Lookup("Nu Invest"); !ok || cnpj != "62.169.875/0001-79" {
		t.Errorf("Lookup() after warm = %q, %v, want hit", cnpj, ok)
	}
}
