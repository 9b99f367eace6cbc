package donchian

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantanalyzer/internal/engine"
	"quantanalyzer/internal/logger"
	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

var ErrInvalidParams = errors.New("invalid donchian parameters")

// atrPeriod is the smoothing window of the stop-loss ATR.
const atrPeriod = 20

// Strategy is a long-only channel breakout on mid prices. A symbol is
// entered when its mid breaks the highest mid of the preceding Lookback
// steps and left when it breaks the lowest. With StopATR set, a position is
// also left once the mid falls StopATR average true ranges below the entry.
type Strategy struct {
	Symbols  []string
	Lookback int
	Weight   decimal.Decimal // target fraction per held symbol
	StopATR  decimal.Decimal // zero disables the stop
	FeeRate  decimal.Decimal // rate the engine charges, below 0.5

	quotes    engine.QuoteSource
	allocator *LongOnlyAllocator

	history  map[string][]decimal.Decimal
	stopLoss map[string]decimal.Decimal
}

func New(quotes engine.QuoteSource, symbols []string, lookback int, weight decimal.Decimal) *Strategy {
	return &Strategy{
		Symbols:  symbols,
		Lookback: lookback,
		Weight:   weight,
		quotes:   quotes,
	}
}

func (s *Strategy) Init() error {
	if len(s.Symbols) == 0 {
		return fmt.Errorf("%w: no symbols", ErrInvalidParams)
	}
	if s.Lookback < 1 {
		return fmt.Errorf("%w: lookback %d", ErrInvalidParams, s.Lookback)
	}
	if !s.Weight.IsPositive() || s.Weight.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: weight %s", ErrInvalidParams, s.Weight)
	}
	if s.StopATR.IsNegative() {
		return fmt.Errorf("%w: stop %s", ErrInvalidParams, s.StopATR)
	}
	if s.FeeRate.IsNegative() || s.FeeRate.GreaterThanOrEqual(decimal.RequireFromString("0.5")) {
		return fmt.Errorf("%w: fee rate %s", ErrInvalidParams, s.FeeRate)
	}
	s.allocator = NewLongOnlyAllocator(s.Weight, s.FeeRate)
	s.history = make(map[string][]decimal.Decimal, len(s.Symbols))
	s.stopLoss = make(map[string]decimal.Decimal)
	return nil
}

func (s *Strategy) Compute(ctx context.Context, today time.Time, p engine.PortfolioApi) (types.SymbolValues, error) {
	signals := make(map[string]Signal, len(s.Symbols))
	spread := decimal.Zero
	for _, sym := range s.Symbols {
		q, err := s.quotes.Quote(ctx, sym, today)
		if err != nil {
			if errors.Is(err, engine.ErrDataUnavailable) {
				logger.FromContext(ctx).Debugw("no quote, symbol skipped", "symbol", sym, "date", today.Format(time.DateOnly))
				continue
			}
			return nil, err
		}
		signals[sym] = s.onMid(sym, q.Mid())
		if q.Ask.IsPositive() {
			spread = decimal.Max(spread, q.Spread().Div(q.Ask))
		}
	}
	return s.allocator.Allocate(signals, p.Positions(), spread), nil
}

// onMid records mid and compares it against the channel of the preceding
// Lookback mids.
func (s *Strategy) onMid(symbol string, mid decimal.Decimal) Signal {
	hist := append(s.history[symbol], mid)
	s.history[symbol] = hist
	if len(hist) <= s.Lookback {
		return SignalNone
	}

	highest, lowest := donchianHighLow(hist[len(hist)-1-s.Lookback : len(hist)-1])
	switch {
	case mid.GreaterThan(highest):
		if s.StopATR.IsPositive() {
			s.stopLoss[symbol] = mid.Sub(calcATR(hist, atrPeriod).Mul(s.StopATR))
		}
		return SignalEnter
	case mid.LessThan(lowest):
		delete(s.stopLoss, symbol)
		return SignalExit
	}
	if stop, ok := s.stopLoss[symbol]; ok && mid.LessThan(stop) {
		delete(s.stopLoss, symbol)
		return SignalExit
	}
	return SignalNone
}

// Utility: Donchian Channel High/Low
func donchianHighLow(mids []decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if len(mids) == 0 {
		return decimal.Zero, decimal.Zero
	}
	return decimal.Max(mids[0], mids[1:]...), decimal.Min(mids[0], mids[1:]...)
}

// calcATR is Wilder's average of the absolute step-to-step moves of a mid
// series. It is zero until period+1 mids are known.
func calcATR(mids []decimal.Decimal, period int) decimal.Decimal {
	if len(mids) < period+1 {
		return decimal.Zero
	}

	trueRanges := make([]decimal.Decimal, 0, len(mids)-1)
	for i := 1; i < len(mids); i++ {
		trueRanges = append(trueRanges, mids[i].Sub(mids[i-1]).Abs())
	}

	atr := decimal.Zero
	for _, tr := range trueRanges[:period] {
		atr = atr.Add(tr)
	}
	atr = atr.Div(decimal.NewFromInt(int64(period)))

	for i := period; i < len(trueRanges); i++ {
		atr = atr.Mul(decimal.NewFromInt(int64(period - 1))).Add(trueRanges[i]).
			Div(decimal.NewFromInt(int64(period)))
	}
	return atr
}
