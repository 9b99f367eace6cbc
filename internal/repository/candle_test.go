package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantanalyzer/types"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var testFrequency = types.Every(time.Hour)
var startTime = time.UnixMilli(0).UTC()
var endTime = startTime.Add(time.Hour * 5)

type mockCandlesRepository struct {
	sqlError error
	empty    bool
	lastArg  *getAggregatesParams
}

func TestDatabase_GetAggregates(t *testing.T) {
	type args struct {
		assetId int
		freq    types.Frequency
		start   time.Time
		end     time.Time
	}
	tests := []struct {
		name       string
		args       args
		empty      bool
		sqlErr     error
		wantErr    error
		wantLen    int
		wantBucket string
	}{
		{"should throw ErrNoCandles on empty result", args{999, testFrequency, startTime, endTime}, true, nil, ErrNoCandles, 0, ""},
		{"should throw ErrNoCandles on no rows", args{999, testFrequency, startTime, endTime}, false, pgx.ErrNoRows, ErrNoCandles, 0, ""},
		{"should throw ErrIntervalNotSupported", args{999, types.Every(3 * time.Hour), startTime, endTime}, false, nil, ErrIntervalNotSupported, 0, ""},
		{"should pass other errors through", args{999, testFrequency, startTime, endTime}, false, context.DeadlineExceeded, context.DeadlineExceeded, 0, ""},
		{"should return hourly candles", args{999, testFrequency, startTime, endTime}, false, nil, nil, 5, "1 hour"},
		{"should bucket business days daily", args{7, types.BusinessDay, startTime, startTime.AddDate(0, 0, 3)}, false, nil, nil, 72, "1 day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCandlesRepository{sqlError: tt.sqlErr, empty: tt.empty}
			db := &Database{candles: repo}
			got, err := db.GetAggregates(context.Background(), tt.args.assetId, "AAPL", tt.args.freq, tt.args.start, tt.args.end)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetAggregates() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAggregates() unexpected error = %v", err)
			}
			if repo.lastArg.TimeBucket != tt.wantBucket {
				t.Errorf("GetAggregates() bucket = %q, want %q", repo.lastArg.TimeBucket, tt.wantBucket)
			}
			if len(got) != tt.wantLen {
				t.Fatalf("GetAggregates() len = %d, want %d", len(got), tt.wantLen)
			}
			for i := range got {
				if got[i].AssetId != tt.args.assetId {
					t.Errorf("GetAggregates() %s assetId got = %v, want %v", got[i].Timestamp, got[i].AssetId, tt.args.assetId)
					break
				}
				if got[i].Frequency != tt.args.freq || got[i].Ticker != "AAPL" {
					t.Errorf("GetAggregates() %s frequency/ticker got = %v/%v", got[i].Timestamp, got[i].Frequency, got[i].Ticker)
					break
				}
				if !got[i].High.Equal(decimal.NewFromInt(got[i].Timestamp.UnixMilli())) {
					t.Errorf("GetAggregates() %s high got = %v", got[i].Timestamp, got[i].High)
					break
				}
			}
		})
	}
}

func TestTimeBucket(t *testing.T) {
	tests := []struct {
		freq    types.Frequency
		want    string
		wantErr error
	}{
		{types.CalendarDay, "1 day", nil},
		{types.Every(5 * time.Minute), "5 minutes", nil},
		{types.Every(7 * 24 * time.Hour), "1 week", nil},
		{types.Every(90 * time.Second), "", ErrIntervalNotSupported},
		{"monthly", "", ErrIntervalNotSupported},
	}
	for _, tt := range tests {
		t.Run(string(tt.freq), func(t *testing.T) {
			got, err := timeBucket(tt.freq)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("timeBucket() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("timeBucket() = %q, want %q", got, tt.want)
			}
		})
	}
}

// GetAggregates returns one hourly row per hour of the window, whatever the
// bucket, with every price set to the row's unix millis.
func (m *mockCandlesRepository) GetAggregates(_ context.Context, arg getAggregatesParams) ([]aggregateRow, error) {
	m.lastArg = &arg
	if m.sqlError != nil {
		return nil, m.sqlError
	}
	if m.empty {
		return []aggregateRow{}, nil
	}
	var rows []aggregateRow
	for i := arg.Starttime; i.Before(arg.Endtime); i = i.Add(time.Hour) {
		v := decimal.NewFromInt(i.UnixMilli())
		rows = append(rows, aggregateRow{
			Bucket:  i,
			AssetID: arg.AssetID,
			Open:    v,
			High:    v,
			Low:     v,
			Close:   v,
			Volume:  v,
		})
	}
	return rows, nil
}
