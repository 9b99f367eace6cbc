package quotes

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"quantanalyzer/internal/engine"
	"quantanalyzer/types"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
)

// Table is an in-memory quote source keyed by symbol and instant. It is safe
// for concurrent use.
type Table struct {
	mu     sync.RWMutex
	quotes map[string]map[time.Time]types.Quote
}

func NewTable() *Table {
	return &Table{quotes: make(map[string]map[time.Time]types.Quote)}
}

// Add records the book of symbol at date, replacing any previous one.
func (t *Table) Add(symbol string, date time.Time, q types.Quote) {
	t.mu.Lock()
	defer t.mu.Unlock()
	byDate, ok := t.quotes[symbol]
	if !ok {
		byDate = make(map[time.Time]types.Quote)
		t.quotes[symbol] = byDate
	}
	byDate[date.UTC()] = q
}

func (t *Table) Quote(_ context.Context, symbol string, date time.Time) (types.Quote, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lookup(symbol, date)
}

// Quotes returns the books of all symbols at date under a single lock.
func (t *Table) Quotes(_ context.Context, symbols []string, date time.Time) (map[string]types.Quote, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]types.Quote, len(symbols))
	for _, sym := range symbols {
		q, err := t.lookup(sym, date)
		if err != nil {
			return nil, err
		}
		out[sym] = q
	}
	return out, nil
}

func (t *Table) lookup(symbol string, date time.Time) (types.Quote, error) {
	q, ok := t.quotes[symbol][date.UTC()]
	if !ok {
		return types.Quote{}, fmt.Errorf("%w: %s at %s", engine.ErrDataUnavailable, symbol, date.Format(time.DateOnly))
	}
	return q, nil
}

// Len returns the number of symbols and books held.
func (t *Table) Len() (symbols, books int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, byDate := range t.quotes {
		books += len(byDate)
	}
	return len(t.quotes), books
}

type quoteRow struct {
	Date   string `csv:"date"`
	Symbol string `csv:"symbol"`
	Bid    string `csv:"bid"`
	Ask    string `csv:"ask"`
}

// LoadCSV reads date,symbol,bid,ask rows into a new Table. Dates are either
// YYYY-MM-DD, taken as midnight in loc, or RFC 3339.
func LoadCSV(r io.Reader, loc *time.Location) (*Table, error) {
	var rows []quoteRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("read quotes csv: %w", err)
	}

	t := NewTable()
	for i, row := range rows {
		line := i + 2 // header is line 1
		date, err := parseDate(row.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bid, err := decimal.NewFromString(row.Bid)
		if err != nil {
			return nil, fmt.Errorf("line %d: bid %q: %w", line, row.Bid, err)
		}
		ask, err := decimal.NewFromString(row.Ask)
		if err != nil {
			return nil, fmt.Errorf("line %d: ask %q: %w", line, row.Ask, err)
		}
		if row.Symbol == "" {
			return nil, fmt.Errorf("line %d: empty symbol", line)
		}
		t.Add(row.Symbol, date, types.NewQuote(bid, ask))
	}
	return t, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if d, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", s, err)
	}
	return d, nil
}
