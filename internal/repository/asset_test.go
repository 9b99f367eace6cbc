package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"quantanalyzer/types"

	"github.com/jackc/pgx/v5"
)

type mockAssetsRepository struct {
	sqlError error
}

func TestDatabase_GetAssetByTicker(t *testing.T) {
	type args struct {
		ticker string
	}
	tests := []struct {
		name    string
		args    args
		want    *types.Asset
		sqlErr  error
		wantErr error
	}{
		{"should throw ErrAssetNotFound", args{"AAPL"}, nil, pgx.ErrNoRows, ErrAssetNotFound},
		{"should pass other errors through", args{"AAPL"}, nil, context.Canceled, context.Canceled},
		{"should return asset", args{"AAPL"}, &types.Asset{Ticker: "AAPL", Id: 1, Currency: "USD", Type: types.AssetTypeStock}, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &Database{
				assets: mockAssetsRepository{
					sqlError: tt.sqlErr,
				},
			}
			got, err := db.GetAssetByTicker(context.Background(), tt.args.ticker)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetAssetByTicker() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAssetByTicker() unexpected error = %v", err)
			}
			if got.Ticker != tt.want.Ticker || got.Id != tt.want.Id {
				t.Errorf("GetAssetByTicker() = %v, want %v", got, tt.want)
			}
			if got.Currency != tt.want.Currency || got.Type != tt.want.Type {
				t.Errorf("GetAssetByTicker() currency/type = %s/%s, want %s/%s", got.Currency, got.Type, tt.want.Currency, tt.want.Type)
			}
			if !got.CreatedAt.Equal(time.UnixMilli(1)) || !got.ModifiedAt.IsZero() {
				t.Errorf("GetAssetByTicker() timestamps = %s/%s", got.CreatedAt, got.ModifiedAt)
			}
		})
	}
}

func (m mockAssetsRepository) GetAssetByTicker(_ context.Context, ticker string) (assetRow, error) {
	if m.sqlError != nil {
		return assetRow{}, m.sqlError
	}
	created := time.UnixMilli(1)
	return assetRow{
		ID:        1,
		Ticker:    ticker,
		Name:      ticker + " Inc.",
		Type:      string(types.AssetTypeStock),
		Currency:  "USD",
		CreatedAt: &created,
	}, nil
}
