package engine

import (
	"context"
	"time"

	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

// DefaultInitialCash seeds the portfolio when none is given.
var DefaultInitialCash = decimal.NewFromInt(10_000_000)

// Portfolio holds the current holdings in units (CASH in currency) and the
// history of every completed step. Only the engine mutates it, and only at
// step boundaries; everything returned by its methods is a copy.
type Portfolio struct {
	positions  types.SymbolValues
	history    []types.Snapshot
	costs      []types.Snapshot
	fills      []types.Fill
	valuations []types.Valuation
}

// NewPortfolio creates a portfolio holding the given quantities. CASH is
// added with a zero balance when missing.
func NewPortfolio(positions types.SymbolValues) *Portfolio {
	p := &Portfolio{positions: positions.Clone()}
	if _, ok := p.positions[types.Cash]; !ok {
		p.positions[types.Cash] = decimal.Zero
	}
	return p
}

// NewCashPortfolio creates an all-cash portfolio.
func NewCashPortfolio(cash decimal.Decimal) *Portfolio {
	return NewPortfolio(types.SymbolValues{types.Cash: cash})
}

func (p *Portfolio) Positions() types.SymbolValues {
	return p.positions.Clone()
}

func (p *Portfolio) Quantity(symbol string) decimal.Decimal {
	return p.positions.Get(symbol)
}

func (p *Portfolio) Cash() decimal.Decimal {
	return p.positions.Get(types.Cash)
}

// History returns one snapshot of the positions per completed step.
func (p *Portfolio) History() []types.Snapshot {
	return cloneSnapshots(p.history)
}

// CostHistory returns, per completed step, the cost fraction charged on
// each traded symbol.
func (p *Portfolio) CostHistory() []types.Snapshot {
	return cloneSnapshots(p.costs)
}

func (p *Portfolio) Fills() []types.Fill {
	return append([]types.Fill(nil), p.fills...)
}

func (p *Portfolio) Valuations() []types.Valuation {
	return append([]types.Valuation(nil), p.valuations...)
}

// PositionsAsPercentages divides each quantity by the sum of all quantities,
// CASH included. Quantities are not priced, so this is a share of units,
// not of value; see Allocation for the value-weighted view.
func (p *Portfolio) PositionsAsPercentages() (types.SymbolValues, error) {
	total := p.positions.Sum()
	if total.IsZero() {
		return nil, ErrZeroValuation
	}
	out := make(types.SymbolValues, len(p.positions))
	for sym, qty := range p.positions {
		out[sym] = qty.Div(total)
	}
	return out, nil
}

// TotalValue prices every position at date and adds the raw CASH balance.
func (p *Portfolio) TotalValue(ctx context.Context, quotes QuoteSource, date time.Time) (decimal.Decimal, error) {
	values, err := Values(ctx, quotes, p.positions.Without(types.Cash), date)
	if err != nil {
		return decimal.Zero, err
	}
	return values.Sum().Add(p.Cash()), nil
}

// Allocation returns each holding's currency value as a fraction of the
// total portfolio value at date, CASH included.
func (p *Portfolio) Allocation(ctx context.Context, quotes QuoteSource, date time.Time) (types.SymbolValues, error) {
	values, err := Values(ctx, quotes, p.positions.Without(types.Cash), date)
	if err != nil {
		return nil, err
	}
	values[types.Cash] = p.Cash()
	alloc, _, err := allocation(values)
	return alloc, err
}

// allocation turns currency values into fractions of their sum.
func allocation(values types.SymbolValues) (types.SymbolValues, decimal.Decimal, error) {
	total := values.Sum()
	if !total.IsPositive() {
		return nil, total, ErrZeroValuation
	}
	out := make(types.SymbolValues, len(values))
	for sym, v := range values {
		out[sym] = v.Div(total)
	}
	return out, total, nil
}

// commit applies a fully computed step. It cannot fail, so a step is either
// committed whole or not at all.
func (p *Portfolio) commit(s *stepResult) {
	p.positions = s.positions
	p.history = append(p.history, types.Snapshot{Date: s.date, Values: s.positions.Clone()})
	p.costs = append(p.costs, types.Snapshot{Date: s.date, Values: s.costs})
	p.fills = append(p.fills, s.fills...)
	p.valuations = append(p.valuations, types.Valuation{
		Date:   s.date,
		Before: s.valueBefore,
		After:  s.valueAfter,
	})
}

func cloneSnapshots(in []types.Snapshot) []types.Snapshot {
	if in == nil {
		return nil
	}
	out := make([]types.Snapshot, len(in))
	for i, s := range in {
		out[i] = types.Snapshot{Date: s.Date, Values: s.Values.Clone()}
	}
	return out
}
