package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quantanalyzer/internal/engine"
	"quantanalyzer/internal/repository"
	"quantanalyzer/types"
)

type bookRepository interface {
	GetQuote(ctx context.Context, ticker string, date time.Time) (types.Quote, error)
	GetQuotes(ctx context.Context, tickers []string, date time.Time) (map[string]types.Quote, error)
}

// BookSource serves the bid/ask recorded in the quotes table.
type BookSource struct {
	repo bookRepository
}

func NewBookSource(repo bookRepository) *BookSource {
	return &BookSource{repo: repo}
}

func (s *BookSource) Quote(ctx context.Context, symbol string, date time.Time) (types.Quote, error) {
	q, err := s.repo.GetQuote(ctx, symbol, date)
	if err != nil {
		if errors.Is(err, repository.ErrNoQuote) {
			return types.Quote{}, fmt.Errorf("%w: %w", engine.ErrDataUnavailable, err)
		}
		return types.Quote{}, err
	}
	return q, nil
}

func (s *BookSource) Quotes(ctx context.Context, symbols []string, date time.Time) (map[string]types.Quote, error) {
	books, err := s.repo.GetQuotes(ctx, symbols, date)
	if err != nil {
		return nil, err
	}
	for _, sym := range symbols {
		if _, ok := books[sym]; !ok {
			return nil, fmt.Errorf("%w: %s at %s", engine.ErrDataUnavailable, sym, date.Format(time.DateOnly))
		}
	}
	return books, nil
}
