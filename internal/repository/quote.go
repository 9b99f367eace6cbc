package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantanalyzer/types"

	"github.com/jackc/pgx/v5"
)

// GetQuote returns the last bid/ask recorded for ticker during the calendar
// day of date. Books from earlier days are never carried forward.
func (db *Database) GetQuote(ctx context.Context, ticker string, date time.Time) (types.Quote, error) {
	from := types.StartOfDay(date)
	row, err := db.quotes.GetQuote(ctx, getQuoteParams{
		Ticker: ticker,
		From:   from,
		To:     from.AddDate(0, 0, 1),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Quote{}, fmt.Errorf("%s at %s: %w", ticker, date.Format(time.DateOnly), ErrNoQuote)
		}
		return types.Quote{}, err
	}
	return types.NewQuote(row.Bid, row.Ask), nil
}

// GetQuotes is the batch form of GetQuote. Tickers without a book that day
// are absent from the result.
func (db *Database) GetQuotes(ctx context.Context, tickers []string, date time.Time) (map[string]types.Quote, error) {
	from := types.StartOfDay(date)
	rows, err := db.quotes.GetQuotes(ctx, getQuotesParams{
		Tickers: tickers,
		From:    from,
		To:      from.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.Quote, len(rows))
	for _, row := range rows {
		out[row.Ticker] = types.NewQuote(row.Bid, row.Ask)
	}
	return out, nil
}
