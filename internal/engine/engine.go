package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantanalyzer/types"
)

// Global error declarations.
var (
	ErrDataUnavailable     = errors.New("quote data unavailable")
	ErrInvalidAllocation   = errors.New("invalid target allocation")
	ErrZeroValuation       = errors.New("portfolio value is zero or negative")
	ErrInsufficientBalance = errors.New("insufficient cash to settle the step")
	ErrInvalidFeeRate      = errors.New("fee rate must be in [0, 1)")
	ErrInvalidDateRange    = errors.New("invalid date range")
	ErrInvalidFrequency    = types.ErrInvalidFrequency
)

type Engine struct {
	config     Config
	backtester *backtester
	now        func() time.Time
}

func NewEngine(strat Strategy, quotes QuoteSource, cfg *Config) (*Engine, error) {
	if strat == nil || quotes == nil {
		return nil, errors.New("engine needs a strategy and a quote source")
	}
	if cfg == nil {
		return nil, errors.New("engine needs a config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		config:     *cfg,
		backtester: newBacktester(strat, quotes),
		now:        time.Now,
	}, nil
}

// Run simulates the whole date range and returns the final portfolio. On
// error the portfolio is returned as it stood after the last committed step.
func (e *Engine) Run(ctx context.Context) (*Portfolio, error) {
	cfg := e.config.withDefaults(e.now())
	if cfg.Start.After(cfg.End) {
		return cfg.InitialPortfolio, fmt.Errorf("%w: start %s after end %s", ErrInvalidDateRange,
			cfg.Start.Format(time.DateOnly), cfg.End.Format(time.DateOnly))
	}
	dates, err := cfg.Frequency.Range(cfg.Start, cfg.End)
	if err != nil {
		return cfg.InitialPortfolio, err
	}

	e.backtester.configure(cfg)
	if err := e.backtester.run(ctx, dates); err != nil {
		return e.backtester.portfolio, err
	}
	return e.backtester.portfolio, nil
}

// Run is the one-call form: end and initial may be nil, in which case the
// run ends today and starts from an all-cash portfolio.
func Run(
	ctx context.Context,
	strat Strategy,
	quotes QuoteSource,
	start time.Time,
	end *time.Time,
	initial *Portfolio,
	frequency types.Frequency,
) (*Portfolio, error) {
	cfg := NewConfig(start, frequency)
	if end != nil {
		cfg.End = *end
	}
	cfg.InitialPortfolio = initial
	eng, err := NewEngine(strat, quotes, cfg)
	if err != nil {
		return nil, err
	}
	return eng.Run(ctx)
}
