package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pythia/internal/backtest"
	"pythia/internal/cache"
	"pythia/internal/domain"
	"pythia/internal/features"
	"pythia/internal/scorer"

	"go.opentelemetry.io/otel/trace"
)

const (
	backtestCacheTTL = time.Hour
	maxReportTrades  = 20

	minPredictionInterval = 1
	maxPredictionInterval = 30
)

var (
	ErrInvalidPeriod   = errors.New("invalid period")
	ErrInvalidInterval = errors.New("interval must be between 1 and 30 days")
)

type BacktestService struct {
	tracer  trace.Tracer
	fetcher PriceFetcher
	harness *backtest.Harness
	cache   cache.TTLCache
}

func NewBacktestService(tracer trace.Tracer, fetcher PriceFetcher, ttlCache cache.TTLCache, maxSteps int) *BacktestService {
	return &BacktestService{
		tracer:  tracer,
		fetcher: fetcher,
		harness: backtest.NewHarness(TechnicalPredict, maxSteps, nil),
		cache:   ttlCache,
	}
}

// TechnicalPredict is the strategy replayed by the backtest: the technical
// indicator ensemble over the data known at each step.
func TechnicalPredict(_ context.Context, known *features.Table) (backtest.Prediction, error) {
	score := scorer.ScoreTechnical(known)
	return backtest.Prediction{
		Label:      score.Label,
		Confidence: score.Confidence,
		Reason:     scorer.Explain(score),
	}, nil
}

// Run fetches history for the period and replays the strategy. The returned
// report keeps only the most recent trades to bound response size.
func (s *BacktestService) Run(ctx context.Context, symbol, period string, intervalDays int) (*domain.BacktestReport, error) {
	ctx, span := s.tracer.Start(ctx, "backtest-service.run")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}
	days, ok := domain.SupportedPeriods[period]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
	if intervalDays < minPredictionInterval || intervalDays > maxPredictionInterval {
		return nil, ErrInvalidInterval
	}

	cacheKey := fmt.Sprintf("backtest:%s:%s:%d", symbol, period, intervalDays)
	if s.cache != nil {
		var cached domain.BacktestReport
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	series, err := s.fetcher.FetchDailySeries(ctx, symbol, days)
	if err != nil {
		return nil, fmt.Errorf("fetching prices for %s: %w", symbol, err)
	}

	report, err := s.harness.Run(ctx, series, period, intervalDays)
	if err != nil {
		return nil, err
	}
	if len(report.Trades) > maxReportTrades {
		report.Trades = report.Trades[len(report.Trades)-maxReportTrades:]
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, report, backtestCacheTTL); err != nil {
			log.Printf("Warning: failed to cache backtest for %s: %v", symbol, err)
		}
	}
	return report, nil
}
