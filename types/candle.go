package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Candle struct {
	AssetId   int             `json:"id"`
	Ticker    string          `json:"ticker"`
	Open      decimal.Decimal `json:"open"`
	Close     decimal.Decimal `json:"close"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Volume    decimal.Decimal `json:"volume"`
	Frequency Frequency       `json:"frequency"`
	Timestamp time.Time       `json:"timestamp"`
}

// QuoteWithSpread turns the candle close into a bid/ask pair spread
// symmetrically around it. spread is a fraction of the close, e.g. 0.001.
func (c Candle) QuoteWithSpread(spread decimal.Decimal) Quote {
	half := c.Close.Mul(spread).Div(decimal.NewFromInt(2))
	return Quote{
		Bid: c.Close.Sub(half),
		Ask: c.Close.Add(half),
	}
}
