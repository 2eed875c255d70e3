package sheet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
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
		t.Fatalf("writing workbook: %v", err)
	}
	return buf
}

func TestRead(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Código de Negociação", "Preço", "Quantidade"},
		{"BOVA11", "100,52", 5},
		{"PETR4", "28,10", 10},
	})

	rows, err := Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Read() returned %d rows, want 2", len(rows))
	}
	if rows[0]["Código de Negociação"] != "BOVA11" {
		t.Errorf("row 0 ticker = %q, want BOVA11", rows[0]["Código de Negociação"])
	}
	if rows[1]["Preço"] != "28,10" {
		t.Errorf("row 1 price = %q, want 28,10", rows[1]["Preço"])
	}
}

func TestReadPreservesRowOrder(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Código de Negociação"},
		{"PETR4"},
		{"BOVA11"},
		{"PETR4"},
	})

	rows, err := Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	want := []string{"PETR4", "BOVA11", "PETR4"}
	for i, w := range want {
		if rows[i]["Código de Negociação"] != w {
			t.Errorf("row %d = %q, want %q", i, rows[i]["Código de Negociação"], w)
		}
	}
}

func TestReadHeaderShorterThanRow(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Código de Negociação", "Preço"},
		{"BOVA11"},
	})

	rows, err := Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got := rows[0]["Preço"]; got != "" {
		t.Errorf("missing trailing cell = %q, want empty string", got)
	}
}

func TestReadNoDataRows(t *testing.T) {
	buf := workbook(t, [][]any{
		{"Código de Negociação", "Preço"},
	})

	if _, err := Read(buf); !errors.Is(err, ErrNoRows) {
		t.Errorf("Read() error = %v, want ErrNoRows", err)
	}
}

func TestReadNotAWorkbook(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not an xlsx"))); err == nil {
		t.Error("Read() on garbage input: want error, got nil")
	}
}
