package engine

import (
	"context"
	"fmt"
	"io"
	"time"

	"quantanalyzer/internal/logger"
	"quantanalyzer/types"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type backtester struct {
	strategy  Strategy
	quotes    QuoteSource
	costs     CostModel
	portfolio *Portfolio

	allowShortSelling bool
	allowLeverage     bool
	omitted           OmittedPolicy

	logger   *zap.SugaredLogger
	progress io.Writer
}

// stepResult is everything a step changes, computed on copies so that the
// portfolio is only touched once the whole step succeeded.
type stepResult struct {
	date        time.Time
	positions   types.SymbolValues
	costs       types.SymbolValues
	fills       []types.Fill
	valueBefore decimal.Decimal
	valueAfter  decimal.Decimal
}

func newBacktester(strat Strategy, quotes QuoteSource) *backtester {
	return &backtester{
		strategy: strat,
		quotes:   quotes,
	}
}

func (b *backtester) configure(cfg Config) {
	b.costs = cfg.Costs
	b.portfolio = cfg.InitialPortfolio
	b.allowShortSelling = cfg.AllowShortSelling
	b.allowLeverage = cfg.AllowLeverage
	b.omitted = cfg.Omitted
	b.logger = cfg.Logger
	b.progress = cfg.Progress
}

func (b *backtester) run(ctx context.Context, dates []time.Time) error {
	if init, ok := b.strategy.(Initializer); ok {
		if err := init.Init(); err != nil {
			return fmt.Errorf("initialize strategy: %w", err)
		}
	}

	// strategies and quote sources log through the run logger
	ctx = logger.WithContext(ctx, b.logger)
	b.logger.Infow("backtest started", "steps", len(dates), "cash", b.portfolio.Cash().String())
	bar := initProgressBar(len(dates), b.progress)
	for _, today := range dates {
		res, err := b.step(ctx, today)
		if err != nil {
			b.logger.Errorw("step aborted", "date", today.Format(time.DateOnly), "error", err)
			return fmt.Errorf("step %s: %w", today.Format(time.DateOnly), err)
		}
		b.portfolio.commit(res)
		b.logger.Debugw("step committed",
			"date", today.Format(time.DateOnly),
			"fills", len(res.fills),
			"value", res.valueAfter.String(),
		)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	b.logger.Infow("backtest finished", "steps", len(dates), "fills", len(b.portfolio.fills))
	return nil
}

// step runs one simulation date: ask the strategy, diff against the current
// allocation, price and fill the orders, charge costs.
func (b *backtester) step(ctx context.Context, today time.Time) (*stepResult, error) {
	target, err := b.strategy.Compute(ctx, today, b.portfolio)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	if err := validateTarget(target, b.allowShortSelling, b.allowLeverage); err != nil {
		return nil, err
	}

	positions := b.portfolio.positions.Clone()
	values, err := Values(ctx, b.quotes, positions.Without(types.Cash), today)
	if err != nil {
		return nil, err
	}
	values[types.Cash] = positions.Get(types.Cash)
	current, total, err := allocation(values)
	if err != nil {
		return nil, err
	}

	delta := percentageDelta(target, current, b.omitted)
	orders := sizeOrders(delta, target, total)
	res := &stepResult{
		date:        today,
		positions:   positions,
		costs:       make(types.SymbolValues),
		valueBefore: total,
		valueAfter:  total,
	}
	if len(orders) == 0 {
		return res, nil
	}

	books, err := Quotes(ctx, b.quotes, orderSymbols(orders), today)
	if err != nil {
		return nil, err
	}

	cash := positions.Get(types.Cash)
	for _, o := range orders {
		q, ok := books[o.symbol]
		if !ok {
			return nil, dataUnavailable(o.symbol, today)
		}
		fill, ok, err := b.fillOrder(o, q, positions.Get(o.symbol), total, today)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		positions[o.symbol] = positions.Get(o.symbol).Add(fill.Quantity)
		cash = cash.Sub(fill.Amount).Sub(fill.CostAmount)
		res.costs[o.symbol] = res.costs.Get(o.symbol).Add(fill.Cost)
		res.fills = append(res.fills, fill)
	}
	if cash.IsNegative() && !b.allowLeverage {
		return nil, fmt.Errorf("%w: cash would be %s", ErrInsufficientBalance, cash)
	}
	positions[types.Cash] = cash

	after := cash
	for _, sym := range positions.Symbols() {
		if sym == types.Cash {
			continue
		}
		qty := positions[sym]
		if qty.IsZero() {
			delete(positions, sym)
			continue
		}
		if q, traded := books[sym]; traded {
			after = after.Add(valueAt(q, qty))
		} else {
			after = after.Add(values.Get(sym))
		}
	}
	res.valueAfter = after
	return res, nil
}

// fillOrder simulates the execution of o against quote q. Buys fill at the
// ask, sells at the bid. A zero target closes exactly the held quantity, and
// without short selling a sell never goes below zero. ok is false when
// nothing is left to trade.
func (b *backtester) fillOrder(o order, q types.Quote, held, total decimal.Decimal, today time.Time) (types.Fill, bool, error) {
	price := q.Bid
	if o.amount.IsPositive() {
		price = q.Ask
	}
	if !price.IsPositive() {
		return types.Fill{}, false, fmt.Errorf("%w: %s has non-positive price %s at %s",
			ErrDataUnavailable, o.symbol, price, today.Format(time.DateOnly))
	}

	amount := o.amount
	pct := o.percentage
	qty := amount.Div(price)

	clamped := false
	switch {
	case o.closing:
		qty, clamped = held.Neg(), true
	case qty.IsNegative() && !b.allowShortSelling && held.Add(qty).IsNegative():
		qty, clamped = decimal.Max(held, decimal.Zero).Neg(), true
	}
	if clamped {
		if qty.IsZero() {
			return types.Fill{}, false, nil
		}
		amount = qty.Mul(price)
		pct = amount.Div(total)
	}

	cost := b.costs.Cost(o.symbol, pct, today)
	costAmount := cost.Abs().Mul(total)
	return types.NewFill(today, o.symbol, pct, amount, price, qty, cost, costAmount), true, nil
}

func initProgressBar(maxTicks int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
