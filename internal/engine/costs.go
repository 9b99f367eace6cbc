package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFeeRate is the swing-trade fee charged on equities, 0.03%.
var DefaultFeeRate = decimal.RequireFromString("0.0003")

// FixedRateCost charges the same rate on every trade. The cost is grossed
// up, amount * r / (1 - r), so that once the fee is taken the net traded
// fraction equals the requested amount.
type FixedRateCost struct {
	Rate decimal.Decimal
}

func NewFixedRateCost(rate decimal.Decimal) FixedRateCost {
	return FixedRateCost{Rate: rate}
}

func (c FixedRateCost) Cost(_ string, amount decimal.Decimal, _ time.Time) decimal.Decimal {
	return grossUp(amount, c.Rate)
}

// SymbolRateCost uses a per-symbol rate, falling back to Default.
type SymbolRateCost struct {
	Default decimal.Decimal
	Rates   map[string]decimal.Decimal
}

func (c SymbolRateCost) Cost(symbol string, amount decimal.Decimal, _ time.Time) decimal.Decimal {
	rate, ok := c.Rates[symbol]
	if !ok {
		rate = c.Default
	}
	return grossUp(amount, rate)
}

// NoCost is a free market.
type NoCost struct{}

func (NoCost) Cost(string, decimal.Decimal, time.Time) decimal.Decimal {
	return decimal.Zero
}

func grossUp(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(rate).Div(decimal.NewFromInt(1).Sub(rate))
}

func validateRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: %s", ErrInvalidFeeRate, rate)
	}
	return nil
}

func validateCostModel(c CostModel) error {
	switch m := c.(type) {
	case FixedRateCost:
		return validateRate(m.Rate)
	case SymbolRateCost:
		if err := validateRate(m.Default); err != nil {
			return err
		}
		for sym, rate := range m.Rates {
			if err := validateRate(rate); err != nil {
				return fmt.Errorf("%s: %w", sym, err)
			}
		}
	}
	return nil
}
