package engine

import (
	"context"
	"time"

	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

// Strategy computes the target allocation for a step, as fractions of the
// total portfolio value. Fractions need not sum to 1; the remainder stays in
// cash.
type Strategy interface {
	Compute(ctx context.Context, today time.Time, portfolio PortfolioApi) (types.SymbolValues, error)
}

// Initializer is implemented by strategies that need setup before the first
// step.
type Initializer interface {
	Init() error
}

// QuoteSource returns the bid/ask of a symbol at a date. Implementations
// return an error wrapping ErrDataUnavailable when no quote exists.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string, date time.Time) (types.Quote, error)
}

// BatchQuoteSource is implemented by sources that can answer several
// symbols at once more cheaply than one by one.
type BatchQuoteSource interface {
	QuoteSource
	Quotes(ctx context.Context, symbols []string, date time.Time) (map[string]types.Quote, error)
}

// CostModel returns the cost of trading amount (a signed fraction of the
// portfolio) as a fraction of the portfolio. It must be free of side effects.
type CostModel interface {
	Cost(symbol string, amount decimal.Decimal, date time.Time) decimal.Decimal
}

// PortfolioApi is the read-only view of the portfolio handed to strategies.
type PortfolioApi interface {
	Positions() types.SymbolValues
	Quantity(symbol string) decimal.Decimal
	Cash() decimal.Decimal
	History() []types.Snapshot
	CostHistory() []types.Snapshot
	Fills() []types.Fill
	PositionsAsPercentages() (types.SymbolValues, error)
	TotalValue(ctx context.Context, quotes QuoteSource, date time.Time) (decimal.Decimal, error)
	Allocation(ctx context.Context, quotes QuoteSource, date time.Time) (types.SymbolValues, error)
}
