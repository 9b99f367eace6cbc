package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

// SideForAmount returns BUY for a positive currency amount and SELL otherwise.
func SideForAmount(amount decimal.Decimal) Side {
	if amount.IsPositive() {
		return SideTypeBuy
	}
	return SideTypeSell
}

// Fill is a simulated execution of one order.
type Fill struct {
	Date       time.Time
	Symbol     string
	Side       Side
	Percentage decimal.Decimal // fraction of the portfolio traded
	Amount     decimal.Decimal // signed currency amount
	Price      decimal.Decimal // ask for buys, bid for sells
	Quantity   decimal.Decimal // signed units
	Cost       decimal.Decimal // cost as fraction of the portfolio
	CostAmount decimal.Decimal // cost in currency, always >= 0
}

func NewFill(
	date time.Time,
	symbol string,
	percentage decimal.Decimal,
	amount decimal.Decimal,
	price decimal.Decimal,
	quantity decimal.Decimal,
	cost decimal.Decimal,
	costAmount decimal.Decimal,
) Fill {
	return Fill{
		Date:       date,
		Symbol:     symbol,
		Side:       SideForAmount(amount),
		Percentage: percentage,
		Amount:     amount,
		Price:      price,
		Quantity:   quantity,
		Cost:       cost,
		CostAmount: costAmount,
	}
}
