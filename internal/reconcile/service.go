// Package reconcile orchestrates a reconciliation session: one uploaded
// trade note, the caller-declared prior positions, and the derived position
// summary.
package reconcile

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/chamatt/NotaNegocia-oB3/internal/decode"
	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
	"github.com/chamatt/NotaNegocia-oB3/internal/format"
	"github.com/chamatt/NotaNegocia-oB3/internal/position"
	"github.com/chamatt/NotaNegocia-oB3/internal/prior"
	"github.com/chamatt/NotaNegocia-oB3/internal/sheet"
)

// ErrUnreadableNote marks an upload with no rows or no recognizable header:
// the structural failure the caller must distinguish from an empty result.
var ErrUnreadableNote = errors.New("trade note is not readable")

// RegistrantDirectory resolves an institution name to its CNPJ.
type RegistrantDirectory interface {
	Lookup(name string) (string, bool)
}

// UploadSummary reports what an upload produced: decoded row counts and the
// positions aggregated from them.
type UploadSummary struct {
	Decoded   int               `json:"decoded"`
	Skipped   int               `json:"skipped"`
	RowErrors []decode.RowError `json:"rowErrors,omitempty"`
	Positions []domain.Position `json:"positions"`
}

// Disclosure pairs a ticker with its declaration line.
type Disclosure struct {
	Ticker string `json:"ticker"`
	CNPJ   string `json:"cnpj,omitempty"`
	Line   string `json:"line"`
}

// Service holds the session state. Transactions are immutable once loaded;
// positions are recomputed in full on every read.
type Service struct {
	decoder    *decode.Decoder
	aggregator *position.Service
	priors     *prior.Store
	directory  RegistrantDirectory // optional

	mu        sync.RWMutex
	txs       []domain.Transaction
	rowErrors []decode.RowError
	skipped   int
}

// NewService creates a reconciliation service. directory may be nil; the
// disclosure lines then omit the CNPJ segment.
func NewService(decoder *decode.Decoder, aggregator *position.Service, priors *prior.Store, directory RegistrantDirectory) *Service {
	return &Service{
		decoder:    decoder,
		aggregator: aggregator,
		priors:     priors,
		directory:  directory,
	}
}

// LoadNote reads an xlsx stream and replaces the session's transaction set.
// Per-row conditions (skips, classification failures) are reported in the
// summary, never as an error; only a structurally unreadable workbook fails.
func (s *Service) LoadNote(r io.Reader) (UploadSummary, error) {
	rows, err := sheet.Read(r)
	if errors.Is(err, sheet.ErrNoRows) || errors.Is(err, sheet.ErrNoHeader) {
		return UploadSummary{}, fmt.Errorf("%w: %w", ErrUnreadableNote, err)
	}
	if err != nil {
		return UploadSummary{}, fmt.Errorf("%w: %w", ErrUnreadableNote, err)
	}

	result := s.decoder.DecodeRows(rows)

	s.mu.Lock()
	s.txs = result.Transactions
	s.rowErrors = result.Errors
	s.skipped = result.Skipped
	s.mu.Unlock()

	return UploadSummary{
		Decoded:   len(result.Transactions),
		Skipped:   result.Skipped,
		RowErrors: result.Errors,
		Positions: s.Positions(),
	}, nil
}

// Positions recomputes the full position list from the current transaction
// set and prior map.
func (s *Service) Positions() []domain.Position {
	s.mu.RLock()
	txs := s.txs
	s.mu.RUnlock()

	return s.aggregator.Aggregate(txs, s.priors.Snapshot())
}

// ApplyPrior merge-patches the prior position for a ticker and returns the
// recomputed position list.
func (s *Service) ApplyPrior(ticker string, patch prior.Patch) ([]domain.Position, error) {
	if _, err := s.priors.Apply(ticker, patch); err != nil {
		return nil, err
	}
	return s.Positions(), nil
}

// RowErrors returns the classification errors collected by the last upload.
func (s *Service) RowErrors() []decode.RowError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowErrors
}

// Disclosures builds the declaration line for every position, enriched with
// the institution's CNPJ when the directory resolves it.
func (s *Service) Disclosures() []Disclosure {
	positions := s.Positions()

	disclosures := make([]Disclosure, 0, len(positions))
	for _, p := range positions {
		var cnpj string
		if s.directory != nil {
			cnpj, _ = s.directory.Lookup(p.Institution)
		}
		disclosures = append(disclosures, Disclosure{
			Ticker: p.Ticker,
			CNPJ:   cnpj,
			Line:   format.Disclosure(p, cnpj),
		})
	}
	return disclosures
}
