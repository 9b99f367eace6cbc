package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"quantanalyzer/types"
)

// WriteCSVFile creates path and hands it to write.
func WriteCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	return write(f)
}

// WriteHistoryCSV writes the position history, one row per step and one
// column per symbol ever held.
func WriteHistoryCSV(w io.Writer, p *Portfolio) error {
	return writeSnapshotsCSV(w, p.History())
}

// WriteCostsCSV writes the cost history in the same layout as the positions.
func WriteCostsCSV(w io.Writer, p *Portfolio) error {
	return writeSnapshotsCSV(w, p.CostHistory())
}

func writeSnapshotsCSV(w io.Writer, snapshots []types.Snapshot) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	columns := make(types.SymbolValues)
	for _, s := range snapshots {
		for sym := range s.Values {
			columns[sym] = s.Values[sym]
		}
	}
	symbols := columns.Symbols()

	header := append([]string{"date"}, symbols...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, s := range snapshots {
		record := make([]string, 0, len(header))
		record = append(record, s.Date.Format(time.DateOnly))
		for _, sym := range symbols {
			v, ok := s.Values[sym]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, v.String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteFillsCSV writes every simulated execution.
func WriteFillsCSV(w io.Writer, p *Portfolio) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"date",
		"symbol",
		"side",
		"percentage",
		"amount",
		"price",
		"quantity",
		"cost",
		"cost_amount",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, f := range p.Fills() {
		if err := writeFillRow(cw, f); err != nil {
			return err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeFillRow(cw *csv.Writer, f types.Fill) error {
	record := []string{
		f.Date.Format(time.DateOnly),
		f.Symbol,
		string(f.Side),
		f.Percentage.String(),
		f.Amount.String(),
		f.Price.String(),
		f.Quantity.String(),
		f.Cost.String(),
		f.CostAmount.String(),
	}
	if err := cw.Write(record); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
