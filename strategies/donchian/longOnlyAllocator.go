package donchian

import (
	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

type Signal int

const (
	SignalNone Signal = iota
	SignalEnter
	SignalExit
)

// LongOnlyAllocator turns breakout signals into a target allocation. Every
// held symbol gets the same weight; when the symbols held exceed what the
// portfolio can fund, the weight is scaled down to share it equally.
//
// The held set never takes more than (1-2r)(1-h) of the portfolio, r being
// the fee rate and h the widest relative spread of the step. Cash then
// covers selling everything held at the bid and buying a new set at the ask,
// fees included, in the same step.
type LongOnlyAllocator struct {
	positionPercent decimal.Decimal
	feeRate         decimal.Decimal
}

func NewLongOnlyAllocator(positionPercent, feeRate decimal.Decimal) *LongOnlyAllocator {
	return &LongOnlyAllocator{
		positionPercent: positionPercent,
		feeRate:         feeRate,
	}
}

func (a *LongOnlyAllocator) budget(spread decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	return one.Sub(a.feeRate.Mul(decimal.NewFromInt(2))).Mul(one.Sub(spread))
}

// Allocate returns a target for every symbol that is or should be held.
// Symbols to be left get an explicit zero, so they are closed even when the
// engine holds omitted symbols. spread is the widest (ask-bid)/ask of the
// step.
func (a *LongOnlyAllocator) Allocate(signals map[string]Signal, positions types.SymbolValues, spread decimal.Decimal) types.SymbolValues {
	var long []string
	target := make(types.SymbolValues)

	for _, sym := range positions.Symbols() {
		if sym == types.Cash {
			continue
		}
		qty := positions[sym]
		switch {
		case qty.IsNegative():
			// long-only: a short left from an earlier run is closed
			target[sym] = decimal.Zero
		case qty.IsPositive() && signals[sym] != SignalExit:
			long = append(long, sym)
		case qty.IsPositive():
			target[sym] = decimal.Zero
		}
	}
	for sym, sig := range signals {
		if sig == SignalEnter && !positions.Get(sym).IsPositive() {
			long = append(long, sym)
		}
	}
	if len(long) == 0 {
		return target
	}

	weight := a.positionPercent
	if maxWeight := a.budget(spread).Div(decimal.NewFromInt(int64(len(long)))); weight.GreaterThan(maxWeight) {
		weight = maxWeight
	}
	for _, sym := range long {
		target[sym] = weight
	}
	return target
}
