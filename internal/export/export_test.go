package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
	"github.com/chamatt/NotaNegocia-oB3/internal/reconcile"
)

func summaryFixture() ([]domain.Position, []reconcile.Disclosure) {
	avg := decimal.RequireFromString("101")
	positions := []domain.Position{
		{
			Ticker:        "BOVA11",
			Institution:   "NU INVEST CORRETORA DE VALORES S.A.",
			TotalQuantity: decimal.RequireFromString("10"),
			AveragePrice:  &avg,
			NetValue:      decimal.RequireFromString("790"),
		},
		{
			Ticker:        "PETR4",
			Institution:   "NU INVEST CORRETORA DE VALORES S.A.",
			TotalQuantity: decimal.Zero,
			NetValue:      decimal.RequireFromString("-220"),
		},
	}
	disclosures := []reconcile.Disclosure{
		{Ticker: "BOVA11", CNPJ: "62.169.875/0001-79", Line: "BOVA11 / 10 Unidades / ..."},
		{Ticker: "PETR4", Line: "PETR4 / 0 Unidades / ..."},
	}
	return positions, disclosures
}

func TestBuildSummaryGrid(t *testing.T) {
	positions, disclosures := summaryFixture()

	grid := buildSummaryGrid(positions, disclosures)
	if len(grid) != 3 {
		t.Fatalf("grid has %d rows, want header + 2 positions", len(grid))
	}

	row := grid[1]
	if row[0] != "BOVA11" {
		t.Errorf("ticker cell = %v", row[0])
	}
	if row[2] != 101.0 {
		t.Errorf("average price cell = %v, want 101.0", row[2])
	}
	if row[5] != "62.169.875/0001-79" {
		t.Errorf("cnpj cell = %v", row[5])
	}

	// Undefined average price exports as an empty cell, not a zero.
	if grid[2][2] != nil {
		t.Errorf("undefined average price cell = %v, want nil", grid[2][2])
	}
}

type captureWriter struct {
	grid [][]any
}

func (c *captureWriter) Write(_ context.Context, grid [][]any) error {
	c.grid = grid
	return nil
}

func TestServiceExportSummary(t *testing.T) {
	positions, disclosures := summaryFixture()
	writer := &captureWriter{}
	svc := NewService(writer)

	if err := svc.ExportSummary(context.Background(), positions, disclosures); err != nil {
		t.Fatalf("ExportSummary() error = %v", err)
	}
	if len(writer.grid) != 3 {
		t.Errorf("writer received %d rows, want 3", len(writer.grid))
	}
}

func TestXLSXWriter(t *testing.T) {
	positions, disclosures := summaryFixture()
	path := filepath.Join(t.TempDir(), "resumo.xlsx")

	w := NewXLSXWriter(path)
	if err := w.Write(context.Background(), buildSummaryGrid(positions, disclosures)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening report: %v", err)
	}
	defer f.Close()

	ticker, err := f.GetCellValue("Resumo", "A2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if ticker != "BOVA11" {
		t.Errorf("A2 = %q, want BOVA11", ticker)
	}
}
