package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quote is the best bid/ask for a symbol at a point in time, in the
// portfolio's reference currency. Bid <= Ask is expected but not enforced.
type Quote struct {
	Bid decimal.Decimal `json:"bid"`
	Ask decimal.Decimal `json:"ask"`
}

func NewQuote(bid, ask decimal.Decimal) Quote {
	return Quote{Bid: bid, Ask: ask}
}

// Mid returns the midpoint between bid and ask.
func (q Quote) Mid() decimal.Decimal {
	return q.Bid.Add(q.Ask).Div(decimal.NewFromInt(2))
}

// Spread returns ask minus bid.
func (q Quote) Spread() decimal.Decimal {
	return q.Ask.Sub(q.Bid)
}

func (q Quote) String() string {
	return fmt.Sprintf("%s/%s", q.Bid, q.Ask)
}
