package types

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Cash is the reserved symbol holding the balance in the reference currency.
const Cash = "CASH"

// SymbolValues maps a symbol to a value whose meaning (quantity, price or
// fraction of the portfolio) depends on where the map comes from. A single
// map never mixes meanings.
type SymbolValues map[string]decimal.Decimal

// Get returns the value for symbol, or zero when it is missing.
func (sv SymbolValues) Get(symbol string) decimal.Decimal {
	v, ok := sv[symbol]
	if !ok {
		return decimal.Zero
	}
	return v
}

// Clone returns a copy that shares nothing with sv.
func (sv SymbolValues) Clone() SymbolValues {
	out := make(SymbolValues, len(sv))
	for sym, v := range sv {
		out[sym] = v
	}
	return out
}

// Symbols returns the keys sorted, which is the processing order used
// everywhere a deterministic iteration is required.
func (sv SymbolValues) Symbols() []string {
	syms := make([]string, 0, len(sv))
	for sym := range sv {
		syms = append(syms, sym)
	}
	sort.Strings(syms)
	return syms
}

// Sum adds up all the values.
func (sv SymbolValues) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range sv {
		total = total.Add(v)
	}
	return total
}

// Without returns a copy of sv minus the given symbol.
func (sv SymbolValues) Without(symbol string) SymbolValues {
	out := sv.Clone()
	delete(out, symbol)
	return out
}

// Equal reports whether both maps hold the same symbols with equal values.
func (sv SymbolValues) Equal(other SymbolValues) bool {
	if len(sv) != len(other) {
		return false
	}
	for sym, v := range sv {
		o, ok := other[sym]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}
