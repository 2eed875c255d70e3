// Package sheet reads an uploaded trade-note workbook into raw rows.
// Only the first worksheet is read; the core never touches the binary
// format beyond this boundary.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoRows marks a workbook with no data rows at all.
	ErrNoRows = errors.New("sheet has no rows")
	// ErrNoHeader marks a workbook whose first row has no column labels.
	ErrNoHeader = errors.New("sheet has no recognizable header row")
)

// Read decodes an xlsx stream into an ordered sequence of row mappings
// (column label → raw cell value). Fully empty data rows are dropped;
// everything else is passed through for the decoder to judge.
func Read(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoRows
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading worksheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	header := rows[0]
	if !hasLabels(header) {
		return nil, ErrNoHeader
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if !hasLabels(cells) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, label := range header {
			label = strings.TrimSpace(label)
			if label == "" {
				continue
			}
			// GetRows truncates trailing empty cells.
			if i < len(cells) {
				row[label] = cells[i]
			} else {
				row[label] = ""
			}
		}
		out = append(out, row)
	}

	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func hasLabels(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
