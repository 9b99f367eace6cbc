package engine

import (
	"fmt"

	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

// order is a currency amount to buy (positive) or sell (negative), derived
// from a percentage delta. Orders live for one step only.
type order struct {
	symbol     string
	percentage decimal.Decimal
	amount     decimal.Decimal
	closing    bool // target is zero: the whole position goes
}

// validateTarget rejects allocations the engine cannot execute under the
// configured short selling and leverage rules. CASH entries are ignored.
func validateTarget(target types.SymbolValues, allowShort, allowLeverage bool) error {
	sum := decimal.Zero
	for _, sym := range target.Symbols() {
		if sym == types.Cash {
			continue
		}
		frac := target[sym]
		if frac.IsNegative() && !allowShort {
			return fmt.Errorf("%w: negative fraction %s for %s without short selling", ErrInvalidAllocation, frac, sym)
		}
		sum = sum.Add(frac)
	}
	if sum.GreaterThan(decimal.NewFromInt(1)) && !allowLeverage {
		return fmt.Errorf("%w: fractions sum to %s without leverage", ErrInvalidAllocation, sum)
	}
	return nil
}

// percentageDelta returns target minus current over the union of non-cash
// symbols, dropping exact zeros. Under HoldOmitted, symbols the target does
// not mention are left out entirely.
func percentageDelta(target, current types.SymbolValues, omitted OmittedPolicy) types.SymbolValues {
	union := make(map[string]struct{}, len(target)+len(current))
	for sym := range target {
		union[sym] = struct{}{}
	}
	for sym := range current {
		union[sym] = struct{}{}
	}
	delete(union, types.Cash)

	delta := make(types.SymbolValues, len(union))
	for sym := range union {
		want, stated := target[sym]
		if !stated {
			if omitted == HoldOmitted {
				continue
			}
			want = decimal.Zero
		}
		d := want.Sub(current.Get(sym))
		if d.IsZero() {
			continue
		}
		delta[sym] = d
	}
	return delta
}

// sizeOrders converts a percentage delta to currency orders against the
// portfolio total, in symbol order.
func sizeOrders(delta, target types.SymbolValues, total decimal.Decimal) []order {
	orders := make([]order, 0, len(delta))
	for _, sym := range delta.Symbols() {
		amount := delta[sym].Mul(total)
		if amount.IsZero() {
			continue
		}
		orders = append(orders, order{
			symbol:     sym,
			percentage: delta[sym],
			amount:     amount,
			closing:    target.Get(sym).IsZero(),
		})
	}
	return orders
}

func orderSymbols(orders []order) []string {
	syms := make([]string, 0, len(orders))
	for _, o := range orders {
		syms = append(syms, o.symbol)
	}
	return syms
}
