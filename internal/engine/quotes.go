package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"quantanalyzer/types"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Quotes fetches the quotes of several symbols at the same date. Sources
// without a batch form are queried concurrently, one symbol per goroutine.
func Quotes(ctx context.Context, src QuoteSource, symbols []string, date time.Time) (map[string]types.Quote, error) {
	if batch, ok := src.(BatchQuoteSource); ok {
		return batch.Quotes(ctx, symbols, date)
	}

	out := make(map[string]types.Quote, len(symbols))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			q, err := src.Quote(gctx, sym, date)
			if err != nil {
				return err
			}
			mu.Lock()
			out[sym] = q
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Value returns the signed currency value of amount units of symbol. Long
// amounts are valued at the ask, short amounts at the bid.
func Value(ctx context.Context, src QuoteSource, symbol string, amount decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	q, err := src.Quote(ctx, symbol, date)
	if err != nil {
		return decimal.Zero, err
	}
	return valueAt(q, amount), nil
}

// Values is the batch form of Value.
func Values(ctx context.Context, src QuoteSource, amounts types.SymbolValues, date time.Time) (types.SymbolValues, error) {
	out := make(types.SymbolValues, len(amounts))
	var symbols []string
	for _, sym := range amounts.Symbols() {
		if amounts[sym].IsZero() {
			out[sym] = decimal.Zero
			continue
		}
		symbols = append(symbols, sym)
	}
	if len(symbols) == 0 {
		return out, nil
	}

	quotes, err := Quotes(ctx, src, symbols, date)
	if err != nil {
		return nil, err
	}
	for _, sym := range symbols {
		q, ok := quotes[sym]
		if !ok {
			return nil, dataUnavailable(sym, date)
		}
		out[sym] = valueAt(q, amounts[sym])
	}
	return out, nil
}

func valueAt(q types.Quote, amount decimal.Decimal) decimal.Decimal {
	if amount.IsPositive() {
		return q.Ask.Mul(amount)
	}
	return q.Bid.Mul(amount)
}

func dataUnavailable(symbol string, date time.Time) error {
	return fmt.Errorf("%w: %s at %s", ErrDataUnavailable, symbol, date.Format(time.DateOnly))
}
