// Package export writes the position summary to a spreadsheet destination:
// a Google Sheet or a local xlsx report.
package export

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
	"github.com/chamatt/NotaNegocia-oB3/internal/reconcile"
)

// summaryHeader is the column layout of the exported summary sheet.
var summaryHeader = []any{
	"Ticker", "Quantidade Total", "Custo Médio", "Valor Total",
	"Corretora", "CNPJ", "Descriminação",
}

// SheetWriter writes a summary grid to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, grid [][]any) error
}

// Service builds the summary grid and delegates writing to a SheetWriter.
type Service struct {
	writer SheetWriter
}

// NewService creates a new export Service.
func NewService(writer SheetWriter) *Service {
	return &Service{writer: writer}
}

// ExportSummary writes the current positions and disclosure lines.
func (s *Service) ExportSummary(ctx context.Context, positions []domain.Position, disclosures []reconcile.Disclosure) error {
	return s.writer.Write(ctx, buildSummaryGrid(positions, disclosures))
}

// buildSummaryGrid lays out one row per position, preceded by the header.
func buildSummaryGrid(positions []domain.Position, disclosures []reconcile.Disclosure) [][]any {
	byTicker := lo.SliceToMap(disclosures, func(d reconcile.Disclosure) (string, reconcile.Disclosure) {
		return d.Ticker, d
	})

	grid := make([][]any, 0, len(positions)+1)
	grid = append(grid, summaryHeader)

	for _, p := range positions {
		d := byTicker[p.Ticker]
		grid = append(grid, []any{
			p.Ticker,
			toFloat(p.TotalQuantity),
			ptrFloat(p.AveragePrice),
			toFloat(p.NetValue),
			p.Institution,
			d.CNPJ,
			d.Line,
		})
	}

	return grid
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func ptrFloat(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return f
}
