package engine

import (
	"context"
	"errors"
	"testing"

	"quantanalyzer/types"
)

func TestQuotes_BatchAndConcurrentPaths(t *testing.T) {
	book := map[string]types.Quote{
		"AAPL": quote("99", "100"),
		"MSFT": quote("299", "300"),
		"GOOG": quote("139", "140"),
	}
	symbols := []string{"AAPL", "GOOG", "MSFT"}

	single := &mockQuotes{book: book}
	got, err := Quotes(context.Background(), single, symbols, day1)
	if err != nil {
		t.Fatalf("Quotes() error = %v", err)
	}
	if len(got) != 3 || single.calls != 3 {
		t.Errorf("got %d quotes over %d calls, want 3 and 3", len(got), single.calls)
	}

	batch := &batchQuotes{mockQuotes: mockQuotes{book: book}}
	got, err = Quotes(context.Background(), batch, symbols, day1)
	if err != nil {
		t.Fatalf("Quotes() error = %v", err)
	}
	if batch.batchCalls != 1 {
		t.Errorf("batch calls = %d, want 1", batch.batchCalls)
	}
	for _, sym := range symbols {
		if !got[sym].Ask.Equal(book[sym].Ask) {
			t.Errorf("%s ask = %s, want %s", sym, got[sym].Ask, book[sym].Ask)
		}
	}
}

func TestQuotes_MissingSymbol(t *testing.T) {
	src := &mockQuotes{book: map[string]types.Quote{"AAPL": quote("99", "100")}}
	_, err := Quotes(context.Background(), src, []string{"AAPL", "ZZZZ"}, day1)
	if !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("Quotes() error = %v, want %v", err, ErrDataUnavailable)
	}
}

func TestValue(t *testing.T) {
	src := &mockQuotes{book: map[string]types.Quote{"AAPL": quote("99", "100")}}
	tests := []struct {
		name      string
		symbol    string
		amount    string
		want      string
		wantCalls int
		wantErr   error
	}{
		{name: "long at ask", symbol: "AAPL", amount: "3", want: "300", wantCalls: 1},
		{name: "short at bid", symbol: "AAPL", amount: "-3", want: "-297", wantCalls: 1},
		{name: "zero amount skips lookup", symbol: "ZZZZ", amount: "0", want: "0"},
		{name: "unknown symbol", symbol: "ZZZZ", amount: "1", wantCalls: 1, wantErr: ErrDataUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.calls = 0
			got, err := Value(context.Background(), src, tt.symbol, d(tt.amount), day1)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Value() error = %v, want %v", err, tt.wantErr)
			}
			if src.calls != tt.wantCalls {
				t.Errorf("quote calls = %d, want %d", src.calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				return
			}
			requireDecimal(t, "value", got, d(tt.want))
		})
	}
}

func TestValues(t *testing.T) {
	src := &batchQuotes{mockQuotes: mockQuotes{book: map[string]types.Quote{
		"AAPL": quote("99", "100"),
		"MSFT": quote("299", "300"),
	}}}
	got, err := Values(context.Background(), src, types.SymbolValues{
		"AAPL": d("2"),
		"MSFT": d("-1"),
		"GONE": d("0"),
	}, day1)
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	want := types.SymbolValues{"AAPL": d("200"), "MSFT": d("-299"), "GONE": d("0")}
	if !got.Equal(want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}
	if src.calls != 2 {
		t.Errorf("quote calls = %d, want 2", src.calls)
	}
}
