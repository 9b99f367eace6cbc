package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one dated entry of a portfolio history.
type Snapshot struct {
	Date   time.Time
	Values SymbolValues
}

// Valuation records the total portfolio value of a step, before and after
// the step's orders were applied.
type Valuation struct {
	Date   time.Time
	Before decimal.Decimal
	After  decimal.Decimal
}
