package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// dbtx is the part of pgxpool.Pool the queries need.
type dbtx interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db dbtx
}

func newQueries(db dbtx) *queries {
	return &queries{db: db}
}

type assetRow struct {
	ID         int32      `db:"id"`
	Ticker     string     `db:"ticker"`
	Name       string     `db:"name"`
	Type       string     `db:"type"`
	Currency   string     `db:"currency"`
	CreatedAt  *time.Time `db:"created_at"`
	ModifiedAt *time.Time `db:"modified_at"`
}

const getAssetByTicker = `
SELECT id, ticker, name, type, currency, created_at, modified_at
FROM assets
WHERE ticker = $1
LIMIT 1`

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	rows, err := q.db.Query(ctx, getAssetByTicker, ticker)
	if err != nil {
		return assetRow{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[assetRow])
}

type getAggregatesParams struct {
	TimeBucket string
	AssetID    int32
	Starttime  time.Time
	Endtime    time.Time
}

type aggregateRow struct {
	Bucket  time.Time       `db:"bucket"`
	AssetID int32           `db:"asset_id"`
	Open    decimal.Decimal `db:"open"`
	High    decimal.Decimal `db:"high"`
	Low     decimal.Decimal `db:"low"`
	Close   decimal.Decimal `db:"close"`
	Volume  decimal.Decimal `db:"volume"`
}

// getAggregates relies on the timescaledb time_bucket, first and last
// functions.
const getAggregates = `
SELECT time_bucket($1::interval, timestamp) AS bucket,
       asset_id,
       first(open, timestamp)  AS open,
       max(high)               AS high,
       min(low)                AS low,
       last(close, timestamp)  AS close,
       sum(volume)             AS volume
FROM candles
WHERE asset_id = $2
  AND timestamp >= $3
  AND timestamp < $4
GROUP BY bucket, asset_id
ORDER BY bucket`

func (q *queries) GetAggregates(ctx context.Context, arg getAggregatesParams) ([]aggregateRow, error) {
	rows, err := q.db.Query(ctx, getAggregates, arg.TimeBucket, arg.AssetID, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[aggregateRow])
}

type getQuoteParams struct {
	Ticker string
	From   time.Time
	To     time.Time
}

type getQuotesParams struct {
	Tickers []string
	From    time.Time
	To      time.Time
}

type quoteRow struct {
	Ticker    string          `db:"ticker"`
	Timestamp time.Time       `db:"timestamp"`
	Bid       decimal.Decimal `db:"bid"`
	Ask       decimal.Decimal `db:"ask"`
}

// getQuote returns the last book of the window [From, To).
const getQuote = `
SELECT a.ticker, q.timestamp, q.bid, q.ask
FROM quotes q
JOIN assets a ON a.id = q.asset_id
WHERE a.ticker = $1
  AND q.timestamp >= $2
  AND q.timestamp < $3
ORDER BY q.timestamp DESC
LIMIT 1`

func (q *queries) GetQuote(ctx context.Context, arg getQuoteParams) (quoteRow, error) {
	rows, err := q.db.Query(ctx, getQuote, arg.Ticker, arg.From, arg.To)
	if err != nil {
		return quoteRow{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[quoteRow])
}

const getQuotes = `
SELECT DISTINCT ON (a.ticker) a.ticker, q.timestamp, q.bid, q.ask
FROM quotes q
JOIN assets a ON a.id = q.asset_id
WHERE a.ticker = ANY($1)
  AND q.timestamp >= $2
  AND q.timestamp < $3
ORDER BY a.ticker, q.timestamp DESC`

func (q *queries) GetQuotes(ctx context.Context, arg getQuotesParams) ([]quoteRow, error) {
	rows, err := q.db.Query(ctx, getQuotes, arg.Tickers, arg.From, arg.To)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[quoteRow])
}
