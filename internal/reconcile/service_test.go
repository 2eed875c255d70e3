package reconcile

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/chamatt/NotaNegocia-oB3/internal/decode"
	"github.com/chamatt/NotaNegocia-oB3/internal/position"
	"github.com/chamatt/NotaNegocia-oB3/internal/prior"
)

var noteHeader = []any{
	"Código de Negociação", "Data do Negócio", "Instituição", "Mercado",
	"Prazo/Vencimento", "Preço", "Quantidade", "Tipo de Movimentação", "Valor",
}

func note(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	all := append([][]any{noteHeader}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("setting row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("writing note: %v", err)
	}
	return buf
}

func noteRow(ticker, price, qty, movement string) []any {
	return []any{ticker, "29/12/2021", "NU INVEST CORRETORA DE VALORES S.A.", "Mercado à Vista", "-", price, qty, movement, ""}
}

type staticDirectory map[string]string

func (d staticDirectory) Lookup(name string) (string, bool) {
	cnpj, ok := d[name]
	return cnpj, ok
}

func newTestService(directory RegistrantDirectory) *Service {
	return NewService(decode.New(), position.NewService(position.QuantityGross), prior.NewStore(), directory)
}

func TestLoadNoteEndToEnd(t *testing.T) {
	svc := newTestService(nil)

	buf := note(t, [][]any{
		noteRow("BOVA11", "100", "5", "Compra"),
		noteRow("BOVA11", "102", "5", "Compra"),
		noteRow("BOVA11", "110", "2", "Venda"),
	})

	summary, err := svc.LoadNote(buf)
	if err != nil {
		t.Fatalf("LoadNote() error = %v", err)
	}

	if summary.Decoded != 3 {
		t.Errorf("Decoded = %d, want 3", summary.Decoded)
	}
	if len(summary.Positions) != 1 {
		t.Fatalf("got %d positions, want 1", len(summary.Positions))
	}

	p := summary.Positions[0]
	if !p.TotalQuantity.Equal(decimal.RequireFromString("10")) {
		t.Errorf("TotalQuantity = %s, want 10", p.TotalQuantity)
	}
	if p.AveragePrice == nil || !p.AveragePrice.Equal(decimal.RequireFromString("101")) {
		t.Errorf("AveragePrice = %v, want 101.00", p.AveragePrice)
	}
	if !p.NetValue.Equal(decimal.RequireFromString("790")) {
		t.Errorf("NetValue = %s, want 790.00", p.NetValue)
	}
}

func TestLoadNoteReportsRowErrorsWithoutAborting(t *testing.T) {
	svc := newTestService(nil)

	buf := note(t, [][]any{
		noteRow("BOVA11", "100", "5", "Compra"),
		noteRow("BOVA11", "100", "5", "Empréstimo"),
	})

	summary, err := svc.LoadNote(buf)
	if err != nil {
		t.Fatalf("LoadNote() error = %v", err)
	}
	if summary.Decoded != 1 {
		t.Errorf("Decoded = %d, want 1", summary.Decoded)
	}
	if len(summary.RowErrors) != 1 {
		t.Fatalf("RowErrors = %v, want one classification error", summary.RowErrors)
	}
}

func TestLoadNoteUnreadable(t *testing.T) {
	svc := newTestService(nil)

	if _, err := svc.LoadNote(bytes.NewReader([]byte("not a workbook"))); !errors.Is(err, ErrUnreadableNote) {
		t.Errorf("LoadNote() error = %v, want ErrUnreadableNote", err)
	}
}

func TestApplyPriorRecomputesPositions(t *testing.T) {
	svc := newTestService(nil)

	buf := note(t, [][]any{
		noteRow("BOVA11", "102", "5", "Compra"),
	})
	if _, err := svc.LoadNote(buf); err != nil {
		t.Fatalf("LoadNote() error = %v", err)
	}

	price := decimal.RequireFromString("100")
	qty := decimal.RequireFromString("5")
	positions, err := svc.ApplyPrior("BOVA11", prior.Patch{Price: &price, Quantity: &qty})
	if err != nil {
		t.Fatalf("ApplyPrior() error = %v", err)
	}

	p := positions[0]
	if !p.TotalQuantity.Equal(decimal.RequireFromString("10")) {
		t.Errorf("TotalQuantity = %s, want 10 after blending the prior", p.TotalQuantity)
	}
	if p.AveragePrice == nil || !p.AveragePrice.Equal(decimal.RequireFromString("101")) {
		t.Errorf("AveragePrice = %v, want 101.00 after blending the prior", p.AveragePrice)
	}
	if len(p.Transactions) != 1 {
		t.Errorf("Transactions has %d rows, want 1: the prior must stay virtual", len(p.Transactions))
	}
}

func TestDisclosuresEnrichedByDirectory(t *testing.T) {
	directory := staticDirectory{
		"NU INVEST CORRETORA DE VALORES S.A.": "62.169.875/0001-79",
	}
	svc := newTestService(directory)

	buf := note(t, [][]any{
		noteRow("BOVA11", "100", "5", "Compra"),
	})
	if _, err := svc.LoadNote(buf); err != nil {
		t.Fatalf("LoadNote() error = %v", err)
	}

	disclosures := svc.Disclosures()
	if len(disclosures) != 1 {
		t.Fatalf("got %d disclosures, want 1", len(disclosures))
	}
	d := disclosures[0]
	if d.CNPJ != "62.169.875/0001-79" {
		t.Errorf("CNPJ = %q, want directory hit", d.CNPJ)
	}
	want := "BOVA11 / 5 Unidades / Custo Médio R$100,00 / Corretora NU INVEST CORRETORA DE VALORES S.A. / CNPJ 62.169.875/0001-79"
	if d.Line != want {
		t.Errorf("Line = %q, want %q", d.Line, want)
	}
}

func TestDisclosuresWithoutDirectoryOmitCNPJ(t *testing.T) {
	svc := newTestService(nil)

	buf := note(t, [][]any{
		noteRow("BOVA11", "100", "5", "Compra"),
	})
	if _, err := svc.LoadNote(buf); err != nil {
		t.Fatalf("LoadNote() error = %v", err)
	}

	d := svc.Disclosures()[0]
	if d.CNPJ != "" {
		t.Errorf("CNPJ = %q, want empty without a directory", d.CNPJ)
	}
}
