package decode

import (
	"fmt"

	"github.com/samber/lo"
)

// Field names a canonical transaction field produced by the decoder.
type Field string

const (
	FieldTicker      Field = "ticker"
	FieldDate        Field = "date"
	FieldInstitution Field = "institution"
	FieldMarket      Field = "market"
	FieldMaturity    Field = "maturity"
	FieldPrice       Field = "price"
	FieldQuantity    Field = "quantity"
	FieldKind        Field = "kind"
	FieldValue       Field = "value"
)

// allFields is the complete canonical field set the header dictionary must cover.
var allFields = []Field{
	FieldTicker, FieldDate, FieldInstitution, FieldMarket, FieldMaturity,
	FieldPrice, FieldQuantity, FieldKind, FieldValue,
}

// HeaderDictionary maps the B3 trade-note column labels to canonical fields.
// This is configuration, not logic: a future note-format migration only
// touches this table.
var HeaderDictionary = map[string]Field{
	"Código de Negociação": FieldTicker,
	"Data do Negócio":      FieldDate,
	"Instituição":          FieldInstitution,
	"Mercado":              FieldMarket,
	"Prazo/Vencimento":     FieldMaturity,
	"Preço":                FieldPrice,
	"Quantidade":           FieldQuantity,
	"Tipo de Movimentação": FieldKind,
	"Valor":                FieldValue,
}

// validateDictionary checks that a header dictionary maps onto the complete
// canonical field set, with no field missing or bound twice.
func validateDictionary(dict map[string]Field) error {
	seen := make(map[Field]string, len(dict))
	for label, field := range dict {
		if prev, dup := seen[field]; dup {
			return fmt.Errorf("header dictionary binds field %q twice: %q and %q", field, prev, label)
		}
		seen[field] = label
	}

	missing := lo.Filter(allFields, func(f Field, _ int) bool {
		_, ok := seen[f]
		return !ok
	})
	if len(missing) > 0 {
		return fmt.Errorf("header dictionary is missing canonical fields: %v", missing)
	}

	return nil
}
