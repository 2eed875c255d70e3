package decode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
)

// ErrRowSkipped marks a row missing one of the required fields (ticker,
// movement type, price, quantity). Skipped rows are counted, never surfaced
// as batch errors.
var ErrRowSkipped = errors.New("row missing required fields")

// ClassificationError reports a movement-type literal outside the two
// recognized values. It is collected per row; the batch continues.
type ClassificationError struct {
	Literal string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("unrecognized movement type: %q", e.Literal)
}

// RowError ties a recoverable decode error to its 1-based data row number.
type RowError struct {
	Row int    `json:"row"`
	Err string `json:"error"`
}

// Result is the outcome of decoding one uploaded sheet. Recoverable per-row
// conditions never abort the batch: skipped rows are counted and
// classification failures reported alongside the decoded transactions.
type Result struct {
	Transactions []domain.Transaction `json:"transactions"`
	Skipped      int                  `json:"skipped"`
	Errors       []RowError           `json:"errors,omitempty"`
}

// Decoder maps raw spreadsheet rows into canonical transactions using a
// fixed header dictionary.
type Decoder struct {
	dict map[string]Field
}

// New creates a Decoder with the B3 header dictionary.
func New() *Decoder {
	d, err := NewWithDictionary(HeaderDictionary)
	if err != nil {
		// The built-in dictionary is validated by tests; reaching this
		// means the constant table itself was broken.
		panic(err)
	}
	return d
}

// NewWithDictionary creates a Decoder with a custom header dictionary.
// The dictionary must cover the complete canonical field set exactly once.
func NewWithDictionary(dict map[string]Field) (*Decoder, error) {
	if err := validateDictionary(dict); err != nil {
		return nil, fmt.Errorf("invalid header dictionary: %w", err)
	}
	return &Decoder{dict: dict}, nil
}

// DecodeRows decodes an ordered row sequence, preserving input order.
func (d *Decoder) DecodeRows(rows []map[string]string) Result {
	var result Result
	for i, row := range rows {
		tx, err := d.DecodeRow(row)
		switch {
		case errors.Is(err, ErrRowSkipped):
			result.Skipped++
		case err != nil:
			result.Errors = append(result.Errors, RowError{Row: i + 1, Err: err.Error()})
		default:
			result.Transactions = append(result.Transactions, tx)
		}
	}
	return result
}

// DecodeRow maps one raw row (source column label → cell value) into a
// canonical Transaction. Columns outside the dictionary are ignored.
func (d *Decoder) DecodeRow(row map[string]string) (domain.Transaction, error) {
	fields := make(map[Field]string, len(d.dict))
	for label, value := range row {
		if f, ok := d.dict[label]; ok {
			fields[f] = strings.TrimSpace(value)
		}
	}

	// Required fields; a row without them is dropped, not an error.
	if fields[FieldTicker] == "" || fields[FieldKind] == "" ||
		fields[FieldPrice] == "" || fields[FieldQuantity] == "" {
		return domain.Transaction{}, ErrRowSkipped
	}

	price, err := parseAmount(fields[FieldPrice])
	if err != nil {
		return domain.Transaction{}, ErrRowSkipped
	}
	quantity, err := parseAmount(fields[FieldQuantity])
	if err != nil {
		return domain.Transaction{}, ErrRowSkipped
	}

	kind, err := classifyMovement(fields[FieldKind])
	if err != nil {
		return domain.Transaction{}, err
	}

	// Total value defaults to price × quantity when the column is absent
	// or unreadable.
	value, err := parseAmount(fields[FieldValue])
	if err != nil {
		value = price.Mul(quantity)
	}

	return domain.Transaction{
		Ticker:      fields[FieldTicker],
		Date:        fields[FieldDate],
		Institution: fields[FieldInstitution],
		Market:      fields[FieldMarket],
		Maturity:    fields[FieldMaturity],
		Price:       price,
		Quantity:    quantity,
		Kind:        kind,
		Value:       value,
	}, nil
}

// classifyMovement maps the movement-type literal onto the two-valued kind.
func classifyMovement(raw string) (domain.TransactionKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "compra":
		return domain.KindAcquisition, nil
	case "venda":
		return domain.KindDisposal, nil
	default:
		return "", &ClassificationError{Literal: raw}
	}
}
