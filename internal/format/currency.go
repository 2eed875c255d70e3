// Package format renders aggregates for the declaration: BRL currency
// strings and the per-ticker disclosure line.
package format

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
)

// Placeholder stands in for values with no defined numeric representation,
// such as the average price of a ticker with nothing bought.
const Placeholder = "—"

// Currency formats an amount as Brazilian reais: "R$1.010,50".
func Currency(d decimal.Decimal) string {
	cents := d.Round(2).Shift(2).IntPart()
	return money.New(cents, money.BRL).Display()
}

// CurrencyPtr formats a nil-able amount, rendering nil as the placeholder
// instead of propagating an undefined value into arithmetic or a panic.
func CurrencyPtr(d *decimal.Decimal) string {
	if d == nil {
		return Placeholder
	}
	return Currency(*d)
}

// Disclosure builds the single-line summary used in the tax form's
// "bens e direitos" description. The CNPJ segment is appended only when the
// registry lookup resolved the institution.
func Disclosure(p domain.Position, cnpj string) string {
	line := fmt.Sprintf("%s / %s Unidades / Custo Médio %s / Corretora %s",
		p.Ticker, p.TotalQuantity, CurrencyPtr(p.AveragePrice), p.Institution)
	if cnpj != "" {
		line += " / CNPJ " + cnpj
	}
	return line
}
