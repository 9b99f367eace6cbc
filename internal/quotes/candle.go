package quotes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quantanalyzer/internal/engine"
	"quantanalyzer/internal/logger"
	"quantanalyzer/internal/repository"
	"quantanalyzer/types"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

type candleRepository interface {
	GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error)
	GetAggregates(ctx context.Context, assetId int, ticker string, freq types.Frequency, start, end time.Time) ([]types.Candle, error)
}

// CandleSource derives a book from daily candles: the close with half of
// spread on each side. Each symbol's candles for [start, end] are loaded
// once, on first use.
type CandleSource struct {
	repo       candleRepository
	spread     decimal.Decimal
	start, end time.Time

	loads singleflight.Group
	mu    sync.RWMutex
	cache map[string]map[string]types.Candle // symbol -> YYYY-MM-DD -> candle
}

func NewCandleSource(repo candleRepository, spread decimal.Decimal, start, end time.Time) *CandleSource {
	return &CandleSource{
		repo:   repo,
		spread: spread,
		start:  types.StartOfDay(start),
		end:    types.StartOfDay(end),
		cache:  make(map[string]map[string]types.Candle),
	}
}

func (s *CandleSource) Quote(ctx context.Context, symbol string, date time.Time) (types.Quote, error) {
	candles, err := s.candles(ctx, symbol)
	if err != nil {
		return types.Quote{}, err
	}
	c, ok := candles[date.Format(time.DateOnly)]
	if !ok {
		return types.Quote{}, fmt.Errorf("%w: no candle for %s at %s", engine.ErrDataUnavailable, symbol, date.Format(time.DateOnly))
	}
	return c.QuoteWithSpread(s.spread), nil
}

func (s *CandleSource) candles(ctx context.Context, symbol string) (map[string]types.Candle, error) {
	s.mu.RLock()
	byDay, ok := s.cache[symbol]
	s.mu.RUnlock()
	if ok {
		return byDay, nil
	}

	v, err, _ := s.loads.Do(symbol, func() (any, error) {
		byDay, err := s.load(ctx, symbol)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[symbol] = byDay
		s.mu.Unlock()
		return byDay, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]types.Candle), nil
}

func (s *CandleSource) load(ctx context.Context, symbol string) (map[string]types.Candle, error) {
	asset, err := s.repo.GetAssetByTicker(ctx, symbol)
	if err != nil {
		if errors.Is(err, repository.ErrAssetNotFound) {
			return nil, fmt.Errorf("%w: %w", engine.ErrDataUnavailable, err)
		}
		return nil, err
	}
	candles, err := s.repo.GetAggregates(ctx, asset.Id, symbol, types.CalendarDay, s.start, s.end.AddDate(0, 0, 1))
	if err != nil && !errors.Is(err, repository.ErrNoCandles) {
		return nil, err
	}
	byDay := make(map[string]types.Candle, len(candles))
	for _, c := range candles {
		byDay[c.Timestamp.Format(time.DateOnly)] = c
	}
	logger.FromContext(ctx).Debugw("candles loaded", "symbol", symbol, "candles", len(byDay))
	return byDay, nil
}
