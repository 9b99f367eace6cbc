package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantanalyzer/types"

	"github.com/jackc/pgx/v5"
)

var durationToBucket = map[time.Duration]string{
	time.Minute:        "1 minute",
	5 * time.Minute:    "5 minutes",
	30 * time.Minute:   "30 minutes",
	time.Hour:          "1 hour",
	4 * time.Hour:      "4 hours",
	24 * time.Hour:     "1 day",
	7 * 24 * time.Hour: "1 week",
}

// timeBucket maps a simulation frequency onto a time_bucket width. Business
// and calendar days both aggregate daily candles.
func timeBucket(freq types.Frequency) (string, error) {
	switch freq {
	case types.BusinessDay, types.CalendarDay:
		return "1 day", nil
	}
	d, err := time.ParseDuration(string(freq))
	if err != nil {
		return "", fmt.Errorf("%s: %w", freq, ErrIntervalNotSupported)
	}
	bucket, ok := durationToBucket[d]
	if !ok {
		return "", fmt.Errorf("%s: %w", freq, ErrIntervalNotSupported)
	}
	return bucket, nil
}

// GetAggregates returns the candles of assetId bucketed at freq over
// [start, end).
func (db *Database) GetAggregates(ctx context.Context, assetId int, ticker string, freq types.Frequency, start, end time.Time) ([]types.Candle, error) {
	bucket, err := timeBucket(freq)
	if err != nil {
		return nil, err
	}
	args := getAggregatesParams{
		TimeBucket: bucket,
		AssetID:    int32(assetId),
		Starttime:  start,
		Endtime:    end,
	}
	candles, err := db.candles.GetAggregates(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNoCandles)
		}
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoCandles)
	}
	return convertCandles(candles, freq, ticker), nil
}

func convertCandles(rows []aggregateRow, freq types.Frequency, ticker string) []types.Candle {
	candles := make([]types.Candle, 0, len(rows))
	for _, row := range rows {
		candles = append(candles, types.Candle{
			AssetId:   int(row.AssetID),
			Ticker:    ticker,
			Open:      row.Open,
			Close:     row.Close,
			High:      row.High,
			Low:       row.Low,
			Volume:    row.Volume,
			Frequency: freq,
			Timestamp: row.Bucket,
		})
	}
	return candles
}
