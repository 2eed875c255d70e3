package domain

import "github.com/shopspring/decimal"

// TransactionKind classifies a trade-note line as a buy or sell leg.
type TransactionKind string

const (
	KindAcquisition TransactionKind = "acquisition"
	KindDisposal    TransactionKind = "disposal"
)

// Transaction is the canonical form of one trade-note spreadsheet row.
// It is immutable for the lifetime of a session: positions are always
// rebuilt from the full transaction list, never patched in place.
type Transaction struct {
	Ticker      string          `json:"ticker"`
	Date        string          `json:"date"` // source format kept verbatim, display only
	Institution string          `json:"institution"`
	Market      string          `json:"market"`
	Maturity    string          `json:"maturity"`
	Price       decimal.Decimal `json:"price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Kind        TransactionKind `json:"kind"`
	Value       decimal.Decimal `json:"value"`
}

// PriorPosition is a user-declared holding carried over from a previous
// reporting period. It is supplied by the caller, never derived from the
// uploaded spreadsheet. A zero quantity means no prior holding.
type PriorPosition struct {
	Ticker   string          `json:"ticker"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Position is the aggregated holding state for one ticker.
// AveragePrice is nil when the ticker has no acquisitions and no prior
// position: the average is undefined, not zero, and the formatting layer
// renders it as a placeholder.
type Position struct {
	Ticker        string           `json:"ticker"`
	Institution   string           `json:"institution"`
	Transactions  []Transaction    `json:"transactions"`
	TotalQuantity decimal.Decimal  `json:"totalQuantity"`
	AveragePrice  *decimal.Decimal `json:"averagePrice"`
	NetValue      decimal.Decimal  `json:"netValue"`
}
