package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pythia/internal/cache"
	"pythia/internal/domain"
	"pythia/internal/features"
	"pythia/internal/fusion"
	"pythia/internal/predictor"
	"pythia/internal/scorer"

	"go.opentelemetry.io/otel/trace"
)

const (
	analysisHistoryDays = 365
	analysisCacheTTL    = 30 * time.Minute
)

var ErrUnsupportedSymbol = errors.New("unsupported symbol")
var ErrInvalidTimeframe = errors.New("invalid timeframe")

type PriceFetcher interface {
	FetchDailySeries(ctx context.Context, symbol string, days int) (domain.PriceSeries, error)
}

type PredictionStore interface {
	Insert(ctx context.Context, result domain.CompositeResult) (*domain.PredictionRecord, error)
	List(ctx context.Context, symbol string, limit int) ([]domain.PredictionRecord, error)
}

type AnalysisService struct {
	tracer      trace.Tracer
	fetcher     PriceFetcher
	engine      *fusion.Engine
	fallback    *predictor.Fallback
	predictions PredictionStore
	cache       cache.TTLCache
}

func NewAnalysisService(
	tracer trace.Tracer,
	fetcher PriceFetcher,
	engine *fusion.Engine,
	fallback *predictor.Fallback,
	predictions PredictionStore,
	ttlCache cache.TTLCache,
) *AnalysisService {
	return &AnalysisService{
		tracer:      tracer,
		fetcher:     fetcher,
		engine:      engine,
		fallback:    fallback,
		predictions: predictions,
		cache:       ttlCache,
	}
}

// Analyze runs the full multi-signal analysis for one symbol. Results are
// cached for 30 minutes and every fresh result is recorded as history when
// a prediction store is configured.
func (s *AnalysisService) Analyze(ctx context.Context, symbol string, tf domain.Timeframe) (*domain.CompositeResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}
	if !tf.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimeframe, tf)
	}

	cacheKey := fmt.Sprintf("analysis:%s:%s", symbol, tf)
	if s.cache != nil {
		var cached domain.CompositeResult
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	series, err := s.fetcher.FetchDailySeries(ctx, symbol, analysisHistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetching prices for %s: %w", symbol, err)
	}

	table, err := features.Build(series)
	if err != nil {
		return nil, fmt.Errorf("building features for %s: %w", symbol, err)
	}

	technical := scorer.ScoreTechnical(table)
	result := s.engine.Fuse(ctx, symbol, tf, technical)

	if s.predictions != nil {
		if _, err := s.predictions.Insert(ctx, result); err != nil {
			log.Printf("Warning: failed to record prediction history for %s: %v", symbol, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, result, analysisCacheTTL); err != nil {
			log.Printf("Warning: failed to cache analysis for %s: %v", symbol, err)
		}
	}
	return &result, nil
}

// AnalyzeTechnical scores the indicator ensemble alone, skipping on-chain
// and social fusion. Used by callers that want the raw technical read.
func (s *AnalysisService) AnalyzeTechnical(ctx context.Context, symbol string) (*domain.SignalScore, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze-technical")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}

	cacheKey := "analysis:technical:" + symbol
	if s.cache != nil {
		var cached domain.SignalScore
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	series, err := s.fetcher.FetchDailySeries(ctx, symbol, analysisHistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetching prices for %s: %w", symbol, err)
	}
	table, err := features.Build(series)
	if err != nil {
		return nil, fmt.Errorf("building features for %s: %w", symbol, err)
	}

	score := scorer.ScoreTechnical(table)
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, score, analysisCacheTTL); err != nil {
			log.Printf("Warning: failed to cache technical score for %s: %v", symbol, err)
		}
	}
	return &score, nil
}

// PredictFallback runs the simplified two-tier predictor, used when callers
// want a quick verdict without the fused multi-signal pipeline.
func (s *AnalysisService) PredictFallback(ctx context.Context, symbol string) (*predictor.Result, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.predict-fallback")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if _, ok := domain.CoinGeckoID[symbol]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
	}

	series, err := s.fetcher.FetchDailySeries(ctx, symbol, analysisHistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetching prices for %s: %w", symbol, err)
	}
	table, err := features.Build(series)
	if err != nil {
		return nil, fmt.Errorf("building features for %s: %w", symbol, err)
	}

	result := s.fallback.Predict(table)
	return &result, nil
}

// History lists persisted predictions, newest first.
func (s *AnalysisService) History(ctx context.Context, symbol string, limit int) ([]domain.PredictionRecord, error) {
	_, span := s.tracer.Start(ctx, "analysis-service.history")
	defer span.End()

	if s.predictions == nil {
		return nil, fmt.Errorf("prediction history is not available")
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol != "" {
		if _, ok := domain.CoinGeckoID[symbol]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedSymbol, symbol)
		}
	}
	return s.predictions.List(ctx, symbol, limit)
}
