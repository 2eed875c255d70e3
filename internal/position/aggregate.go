// Package position reduces canonical transactions into per-ticker positions.
package position

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/chamatt/NotaNegocia-oB3/internal/domain"
)

// QuantityPolicy selects how disposals affect the total quantity held.
// Observed note-processing tools disagree on this; both readings are
// supported and the choice is configuration.
type QuantityPolicy string

const (
	// QuantityGross reports the sum of acquired quantities; disposals only
	// net the cash value.
	QuantityGross QuantityPolicy = "gross"
	// QuantityNet subtracts disposal quantities from the total held.
	QuantityNet QuantityPolicy = "net"
)

// ParsePolicy parses a policy name, defaulting empty input to gross.
func ParsePolicy(s string) (QuantityPolicy, error) {
	switch QuantityPolicy(s) {
	case "":
		return QuantityGross, nil
	case QuantityGross, QuantityNet:
		return QuantityPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown quantity policy: %q", s)
	}
}

// Aggregate partitions transactions by ticker and reduces each group into a
// Position, blending in a prior-period holding when one exists for the
// ticker. Group order follows the first occurrence of each ticker in the
// input; every ticker present in the input appears exactly once in the
// output. The function is pure: identical inputs produce identical output,
// rounding included.
func Aggregate(txs []domain.Transaction, priors map[string]domain.PriorPosition, policy QuantityPolicy) []domain.Position {
	var order []string
	groups := make(map[string][]domain.Transaction)
	for _, tx := range txs {
		if _, seen := groups[tx.Ticker]; !seen {
			order = append(order, tx.Ticker)
		}
		groups[tx.Ticker] = append(groups[tx.Ticker], tx)
	}

	positions := make([]domain.Position, 0, len(order))
	for _, ticker := range order {
		positions = append(positions, reduceGroup(ticker, groups[ticker], priors[ticker], policy))
	}
	return positions
}

func reduceGroup(ticker string, txs []domain.Transaction, prior domain.PriorPosition, policy QuantityPolicy) domain.Position {
	acquisitions := lo.Filter(txs, func(t domain.Transaction, _ int) bool {
		return t.Kind == domain.KindAcquisition
	})
	disposals := lo.Filter(txs, func(t domain.Transaction, _ int) bool {
		return t.Kind == domain.KindDisposal
	})

	// Average acquisition price: value ÷ quantity over every acquisition
	// row plus the synthesized prior-period row. The synthesized row is an
	// aggregation input only; it never appears in the exposed transaction
	// list.
	acqValue := lo.Reduce(acquisitions, func(acc decimal.Decimal, t domain.Transaction, _ int) decimal.Decimal {
		return acc.Add(t.Value)
	}, decimal.Zero)
	acqQuantity := lo.Reduce(acquisitions, func(acc decimal.Decimal, t domain.Transaction, _ int) decimal.Decimal {
		return acc.Add(t.Quantity)
	}, decimal.Zero)

	blendPrior := prior.Quantity.IsPositive()
	if blendPrior {
		acqValue = acqValue.Add(prior.Price.Mul(prior.Quantity))
		acqQuantity = acqQuantity.Add(prior.Quantity)
	}

	// Undefined when nothing was bought; exposed as nil, never a division.
	var averagePrice *decimal.Decimal
	if acqQuantity.IsPositive() {
		avg := acqValue.Div(acqQuantity)
		averagePrice = &avg
	}

	// Net value: acquisitions minus disposals, counting only rows with a
	// strictly positive quantity so malformed zero/negative rows cannot
	// flip the sign of the total.
	netValue := sumPositiveQuantityValue(acquisitions).Sub(sumPositiveQuantityValue(disposals))
	if blendPrior {
		netValue = netValue.Add(prior.Price.Mul(prior.Quantity))
	}

	totalQuantity := lo.Reduce(acquisitions, func(acc decimal.Decimal, t domain.Transaction, _ int) decimal.Decimal {
		return acc.Add(t.Quantity)
	}, decimal.Zero)
	if policy == QuantityNet {
		totalQuantity = lo.Reduce(disposals, func(acc decimal.Decimal, t domain.Transaction, _ int) decimal.Decimal {
			return acc.Sub(t.Quantity)
		}, totalQuantity)
	}
	// The prior quantity is added explicitly, outside the group reduction,
	// so a later re-aggregation cannot double count it.
	if blendPrior {
		totalQuantity = totalQuantity.Add(prior.Quantity)
	}

	return domain.Position{
		Ticker:        ticker,
		Institution:   txs[0].Institution,
		Transactions:  txs,
		TotalQuantity: totalQuantity,
		AveragePrice:  domain.RoundCurrencyPtr(averagePrice),
		NetValue:      domain.RoundCurrency(netValue),
	}
}

func sumPositiveQuantityValue(txs []domain.Transaction) decimal.Decimal {
	return lo.Reduce(txs, func(acc decimal.Decimal, t domain.Transaction, _ int) decimal.Decimal {
		if !t.Quantity.IsPositive() {
			return acc
		}
		return acc.Add(t.Value)
	}, decimal.Zero)
}
