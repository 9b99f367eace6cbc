package engine

import (
	"bytes"
	"testing"

	"quantanalyzer/types"

	"github.com/google/go-cmp/cmp"
)

func csvPortfolio() *Portfolio {
	p := NewCashPortfolio(d("1000"))
	p.commit(&stepResult{
		date:        day1,
		positions:   types.SymbolValues{types.Cash: d("500"), "MSFT": d("2")},
		costs:       types.SymbolValues{"MSFT": d("0.0001")},
		fills:       []types.Fill{types.NewFill(day1, "MSFT", d("0.5"), d("500"), d("250"), d("2"), d("0.0001"), d("0.1"))},
		valueBefore: d("1000"),
		valueAfter:  d("999.9"),
	})
	p.commit(&stepResult{
		date:        day2,
		positions:   types.SymbolValues{types.Cash: d("100"), "MSFT": d("2"), "AAPL": d("4")},
		costs:       types.SymbolValues{"AAPL": d("0.0002")},
		fills:       []types.Fill{types.NewFill(day2, "AAPL", d("0.4"), d("400"), d("100"), d("4"), d("0.0002"), d("0.2"))},
		valueBefore: d("999.9"),
		valueAfter:  d("999.7"),
	})
	return p
}

func TestWriteHistoryCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistoryCSV(&buf, csvPortfolio()); err != nil {
		t.Fatalf("WriteHistoryCSV() error = %v", err)
	}
	want := "date,AAPL,CASH,MSFT\n" +
		"2024-01-02,,500,2\n" +
		"2024-01-03,4,100,2\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("history csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCostsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCostsCSV(&buf, csvPortfolio()); err != nil {
		t.Fatalf("WriteCostsCSV() error = %v", err)
	}
	want := "date,AAPL,MSFT\n" +
		"2024-01-02,,0.0001\n" +
		"2024-01-03,0.0002,\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("costs csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFillsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFillsCSV(&buf, csvPortfolio()); err != nil {
		t.Fatalf("WriteFillsCSV() error = %v", err)
	}
	want := "date,symbol,side,percentage,amount,price,quantity,cost,cost_amount\n" +
		"2024-01-02,MSFT,BUY,0.5,500,250,2,0.0001,0.1\n" +
		"2024-01-03,AAPL,BUY,0.4,400,100,4,0.0002,0.2\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("fills csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteHistoryCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistoryCSV(&buf, NewCashPortfolio(d("1"))); err != nil {
		t.Fatalf("WriteHistoryCSV() error = %v", err)
	}
	if got := buf.String(); got != "date\n" {
		t.Errorf("empty history csv = %q, want header only", got)
	}
}
