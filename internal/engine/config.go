package engine

import (
	"fmt"
	"io"
	"time"

	"quantanalyzer/types"

	"go.uber.org/zap"
)

// OmittedPolicy decides what happens to a held symbol that the strategy's
// target allocation does not mention.
type OmittedPolicy string

const (
	// LiquidateOmitted treats a missing target as zero and sells the position.
	LiquidateOmitted OmittedPolicy = "liquidate"
	// HoldOmitted leaves the position untouched.
	HoldOmitted OmittedPolicy = "hold"
)

func ParseOmittedPolicy(s string) (OmittedPolicy, error) {
	switch p := OmittedPolicy(s); p {
	case LiquidateOmitted, HoldOmitted:
		return p, nil
	}
	return "", fmt.Errorf("unknown omitted-symbol policy %q", s)
}

type Config struct {
	Start     time.Time
	End       time.Time // zero means today at midnight
	Frequency types.Frequency

	InitialPortfolio *Portfolio // nil means DefaultInitialCash in CASH
	Costs            CostModel  // nil means DefaultFeeRate

	AllowShortSelling bool
	AllowLeverage     bool
	Omitted           OmittedPolicy

	Logger   *zap.SugaredLogger
	Progress io.Writer // progress bar output, nil to disable
}

func NewConfig(start time.Time, frequency types.Frequency) *Config {
	return &Config{
		Start:     start,
		Frequency: frequency,
		Costs:     NewFixedRateCost(DefaultFeeRate),
		Omitted:   LiquidateOmitted,
	}
}

func (c *Config) Validate() error {
	if c.Start.IsZero() {
		return fmt.Errorf("%w: missing start date", ErrInvalidDateRange)
	}
	if !c.End.IsZero() && c.Start.After(c.End) {
		return fmt.Errorf("%w: start %s after end %s", ErrInvalidDateRange,
			c.Start.Format(time.DateOnly), c.End.Format(time.DateOnly))
	}
	if err := c.Frequency.Validate(); err != nil {
		return err
	}
	if c.Costs != nil {
		if err := validateCostModel(c.Costs); err != nil {
			return err
		}
	}
	if c.Omitted != "" {
		if _, err := ParseOmittedPolicy(string(c.Omitted)); err != nil {
			return err
		}
	}
	return nil
}

// withDefaults fills every unset field. now is used to resolve a missing
// end date, once, at the start of the run.
func (c Config) withDefaults(now time.Time) Config {
	if c.End.IsZero() {
		c.End = types.StartOfDay(now.In(c.Start.Location()))
	}
	if c.InitialPortfolio == nil {
		c.InitialPortfolio = NewCashPortfolio(DefaultInitialCash)
	}
	if c.Costs == nil {
		c.Costs = NewFixedRateCost(DefaultFeeRate)
	}
	if c.Omitted == "" {
		c.Omitted = LiquidateOmitted
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	if c.Progress == nil {
		c.Progress = io.Discard
	}
	return c
}
