package domain

import "github.com/shopspring/decimal"

// currencyPrecision is the number of decimal places exposed for monetary
// aggregates. Intermediate sums are kept at full precision and rounded
// only at the point of exposure.
const currencyPrecision = 2

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// RoundCurrency rounds a decimal to currency precision (2 places).
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(currencyPrecision)
}

// RoundCurrencyPtr rounds through a nil-able decimal, preserving nil.
func RoundCurrencyPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	rounded := d.Round(currencyPrecision)
	return &rounded
}
