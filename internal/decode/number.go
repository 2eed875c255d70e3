package decode

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a spreadsheet cell into a decimal, accepting both the
// Brazilian format ("1.234,56") and the plain format excelize yields for
// numeric cells ("1234.56").
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("empty amount")
	}

	d, err := decimal.NewFromString(normalizeBrazilianDecimal(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount: %q", raw)
	}
	return d, nil
}

// normalizeBrazilianDecimal converts Brazilian decimal notation to the
// standard format. "0,8" → "0.8", "1.234,56" → "1234.56", "1.5" → "1.5"
func normalizeBrazilianDecimal(s string) string {
	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	if hasComma && hasDot {
		// Brazilian: dot is thousands, comma is decimal
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else if hasComma {
		// Comma-only: treat as decimal separator
		s = strings.Replace(s, ",", ".", 1)
	}
	// Dot-only or no separator: standard format, no change

	return s
}
