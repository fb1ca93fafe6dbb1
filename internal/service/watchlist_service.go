package service

import (
	"context"
	"fmt"
	"strings"

	"pythia/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type WatchlistRepository interface {
	Add(ctx context.Context, symbol, note string) (*domain.WatchlistEntry, error)
	Remove(ctx context.Context, symbol string) (bool, error)
	List(ctx context.Context) ([]domain.WatchlistEntry, error)
}

type WatchlistService struct {
	tracer trace.Tracer
	repo   WatchlistRepository
}

func NewWatchlistService(tracer trace.Tracer, repo WatchlistRepository) *WatchlistService {
	return &WatchlistService{tracer: tracer, repo: repo}
}

func (s *WatchlistService) Add(ctx context.Context, symbol, note string) (*domain.WatchlistEntry, error) {
	_, span := s.tracer.Start(ctx, "watchlist-service.add")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("watchlist is not available")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}
	return s.repo.Add(ctx, symbol, strings.TrimSpace(note))
}

func (s *WatchlistService) Remove(ctx context.Context, symbol string) (bool, error) {
	_, span := s.tracer.Start(ctx, "watchlist-service.remove")
	defer span.End()

	if s.repo == nil {
		return false, fmt.Errorf("watchlist is not available")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		return false, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}
	return s.repo.Remove(ctx, symbol)
}

func (s *WatchlistService) List(ctx context.Context) ([]domain.WatchlistEntry, error) {
	_, span := s.tracer.Start(ctx, "watchlist-service.list")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("watchlist is not available")
	}
	return s.repo.List(ctx)
}
