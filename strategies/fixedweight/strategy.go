package fixedweight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quantanalyzer/internal/engine"
	"quantanalyzer/types"

	"github.com/shopspring/decimal"
)

var ErrInvalidWeights = errors.New("invalid weights")

// Strategy targets the same weights on every step, rebalancing the drift
// since the previous one.
type Strategy struct {
	Weights types.SymbolValues
}

func New(weights types.SymbolValues) *Strategy {
	return &Strategy{Weights: weights}
}

// ParseWeights reads "AAPL=0.5,MSFT=0.25".
func ParseWeights(s string) (types.SymbolValues, error) {
	weights := make(types.SymbolValues)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sym, w, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(sym) == "" {
			return nil, fmt.Errorf("%w: %q is not SYMBOL=WEIGHT", ErrInvalidWeights, part)
		}
		weight, err := decimal.NewFromString(strings.TrimSpace(w))
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidWeights, part, err)
		}
		weights[strings.ToUpper(strings.TrimSpace(sym))] = weight
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidWeights)
	}
	return weights, nil
}

func (s *Strategy) Init() error {
	if len(s.Weights) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidWeights)
	}
	if _, ok := s.Weights[types.Cash]; ok {
		return fmt.Errorf("%w: %s is the residual and cannot be targeted", ErrInvalidWeights, types.Cash)
	}
	return nil
}

func (s *Strategy) Compute(context.Context, time.Time, engine.PortfolioApi) (types.SymbolValues, error) {
	return s.Weights.Clone(), nil
}
