package engine

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

var (
	day1 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) // Tuesday
	day2 = day1.AddDate(0, 0, 1)
	day3 = day1.AddDate(0, 0, 2)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func quote(bid, ask string) types.Quote { return types.NewQuote(d(bid), d(ask)) }

// mockQuotes serves a constant book per symbol, optionally overridden per
// date. Symbols listed in missing have no quote from that date on.
type mockQuotes struct {
	book    map[string]types.Quote
	dated   map[string]map[time.Time]types.Quote
	missing map[string]time.Time

	mu    sync.Mutex
	calls int
}

func (m *mockQuotes) Quote(_ context.Context, symbol string, date time.Time) (types.Quote, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if from, ok := m.missing[symbol]; ok && !date.Before(from) {
		return types.Quote{}, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
	}
	if q, ok := m.dated[symbol][date]; ok {
		return q, nil
	}
	if q, ok := m.book[symbol]; ok {
		return q, nil
	}
	return types.Quote{}, fmt.Errorf("%w: %s", ErrDataUnavailable, symbol)
}

// batchQuotes records whether the batch path was taken.
type batchQuotes struct {
	mockQuotes
	batchCalls int
}

func (b *batchQuotes) Quotes(ctx context.Context, symbols []string, date time.Time) (map[string]types.Quote, error) {
	b.batchCalls++
	out := make(map[string]types.Quote, len(symbols))
	for _, sym := range symbols {
		q, err := b.Quote(ctx, sym, date)
		if err != nil {
			return nil, err
		}
		out[sym] = q
	}
	return out, nil
}

// scheduleStrategy returns a fixed target per date, or fallback.
type scheduleStrategy struct {
	targets  map[time.Time]types.SymbolValues
	fallback types.SymbolValues
	err      error

	initCalls int
	seen      []time.Time
}

func (s *scheduleStrategy) Init() error {
	s.initCalls++
	return nil
}

func (s *scheduleStrategy) Compute(_ context.Context, today time.Time, _ PortfolioApi) (types.SymbolValues, error) {
	s.seen = append(s.seen, today)
	if s.err != nil {
		return nil, s.err
	}
	if t, ok := s.targets[today]; ok {
		return t.Clone(), nil
	}
	return s.fallback.Clone(), nil
}

// holdStrategy asks for exactly the current allocation after its first
// target has been reached.
type holdStrategy struct {
	quotes QuoteSource
	first  types.SymbolValues
	calls  int
}

func (s *holdStrategy) Compute(ctx context.Context, today time.Time, p PortfolioApi) (types.SymbolValues, error) {
	s.calls++
	if s.calls == 1 {
		return s.first.Clone(), nil
	}
	alloc, err := p.Allocation(ctx, s.quotes, today)
	if err != nil {
		return nil, err
	}
	return alloc.Without(types.Cash), nil
}

func newTestEngine(t *testing.T, strat Strategy, quotes QuoteSource, cfg *Config) *Engine {
	t.Helper()
	eng, err := NewEngine(strat, quotes, cfg)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return eng
}

func requireDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

func requireNear(t *testing.T, name string, got, want decimal.Decimal, tol string) {
	t.Helper()
	if got.Sub(want).Abs().GreaterThan(d(tol)) {
		t.Errorf("%s = %s, want %s (±%s)", name, got, want, tol)
	}
}
