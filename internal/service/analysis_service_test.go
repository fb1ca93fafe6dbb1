package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"pythia/internal/cache"
	"pythia/internal/domain"
	"pythia/internal/fusion"
	"pythia/internal/predictor"
	"pythia/internal/scorer"

	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("service-test")
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

type stubFetcher struct {
	series domain.PriceSeries
	err    error
	calls  int
}

func (s *stubFetcher) FetchDailySeries(ctx context.Context, symbol string, days int) (domain.PriceSeries, error) {
	s.calls++
	return s.series, s.err
}

type stubStore struct {
	inserted []domain.CompositeResult
	records  []domain.PredictionRecord
	err      error
}

func (s *stubStore) Insert(ctx context.Context, result domain.CompositeResult) (*domain.PredictionRecord, error) {
	s.inserted = append(s.inserted, result)
	return &domain.PredictionRecord{}, s.err
}

func (s *stubStore) List(ctx context.Context, symbol string, limit int) ([]domain.PredictionRecord, error) {
	return s.records, s.err
}

type memCache struct {
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) GetJSON(ctx context.Context, key string, dest any) error {
	raw, ok := m.data[key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.sets++
	return nil
}

func testSeries(n int) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Close:     100 + float64(i%10),
			Volume:    1000,
		}
	}
	return domain.PriceSeries{Symbol: "BTC", Bars: bars}
}

func testEngine() *fusion.Engine {
	return fusion.NewEngine(
		scorer.NewOnChainScorer(scorer.NewSimulatedOnChain(fixedNow)),
		scorer.NewSocialScorer(scorer.NewSimulatedSocial(fixedNow)),
		fixedNow,
	)
}

func newTestAnalysisService(fetcher *stubFetcher, store *stubStore, c cache.TTLCache) *AnalysisService {
	return NewAnalysisService(testTracer(), fetcher, testEngine(), predictor.New(), store, c)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	svc := newTestAnalysisService(&stubFetcher{series: testSeries(60)}, &stubStore{}, newMemCache())

	if _, err := svc.Analyze(context.Background(), "NOPE", domain.TimeframeMedium); !errors.Is(err, ErrUnsupportedSymbol) {
		t.Fatalf("expected ErrUnsupportedSymbol, got %v", err)
	}
	if _, err := svc.Analyze(context.Background(), "BTC", domain.Timeframe("2h")); !errors.Is(err, ErrInvalidTimeframe) {
		t.Fatalf("expected ErrInvalidTimeframe, got %v", err)
	}
}

func TestAnalyzeProducesAndPersistsResult(t *testing.T) {
	fetcher := &stubFetcher{series: testSeries(60)}
	store := &stubStore{}
	svc := newTestAnalysisService(fetcher, store, newMemCache())

	result, err := svc.Analyze(context.Background(), "btc", domain.TimeframeMedium)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Symbol != "BTC" || result.Timeframe != domain.TimeframeMedium {
		t.Fatalf("unexpected result header: %+v", result)
	}
	if result.Confidence < 0 || result.Confidence > 100 {
		t.Fatalf("confidence out of range: %v", result.Confidence)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 history insert, got %d", len(store.inserted))
	}
}

func TestAnalyzeServesSecondCallFromCache(t *testing.T) {
	fetcher := &stubFetcher{series: testSeries(60)}
	c := newMemCache()
	svc := newTestAnalysisService(fetcher, &stubStore{}, c)

	if _, err := svc.Analyze(context.Background(), "BTC", domain.TimeframeMedium); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Analyze(context.Background(), "BTC", domain.TimeframeMedium); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 upstream fetch, got %d", fetcher.calls)
	}
	if c.sets != 1 {
		t.Fatalf("expected 1 cache write, got %d", c.sets)
	}
}

func TestAnalyzeSurvivesStoreFailure(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	svc := newTestAnalysisService(&stubFetcher{series: testSeries(60)}, store, newMemCache())

	if _, err := svc.Analyze(context.Background(), "BTC", domain.TimeframeMedium); err != nil {
		t.Fatalf("history failures must not fail the analysis: %v", err)
	}
}

func TestAnalyzePropagatesFetchError(t *testing.T) {
	svc := newTestAnalysisService(&stubFetcher{err: errors.New("upstream down")}, &stubStore{}, newMemCache())

	if _, err := svc.Analyze(context.Background(), "BTC", domain.TimeframeMedium); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
}

func TestAnalyzeTechnicalReturnsIndicatorScoreOnly(t *testing.T) {
	fetcher := &stubFetcher{series: testSeries(60)}
	c := newMemCache()
	svc := newTestAnalysisService(fetcher, &stubStore{}, c)

	score, err := svc.AnalyzeTechnical(context.Background(), "btc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.Source != domain.SourceTechnical {
		t.Fatalf("expected a technical score, got %+v", score)
	}
	if len(score.Reasons) == 0 {
		t.Fatal("expected indicator reasons")
	}

	if _, err := svc.AnalyzeTechnical(context.Background(), "BTC"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected the second call to hit the cache, got %d fetches", fetcher.calls)
	}

	if _, err := svc.AnalyzeTechnical(context.Background(), "NOPE"); !errors.Is(err, ErrUnsupportedSymbol) {
		t.Fatalf("expected ErrUnsupportedSymbol, got %v", err)
	}
}

func TestPredictFallbackReturnsResult(t *testing.T) {
	svc := newTestAnalysisService(&stubFetcher{series: testSeries(60)}, &stubStore{}, newMemCache())

	result, err := svc.PredictFallback(context.Background(), "BTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Reason == "" {
		t.Fatal("expected a reason")
	}
}

func TestHistoryValidatesSymbolFilter(t *testing.T) {
	store := &stubStore{records: []domain.PredictionRecord{{Symbol: "BTC"}}}
	svc := newTestAnalysisService(&stubFetcher{}, store, newMemCache())

	records, err := svc.History(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	if _, err := svc.History(context.Background(), "NOPE", 10); !errors.Is(err, ErrUnsupportedSymbol) {
		t.Fatalf("expected ErrUnsupportedSymbol, got %v", err)
	}
}

func TestHistoryWithoutStoreFails(t *testing.T) {
	svc := NewAnalysisService(testTracer(), &stubFetcher{}, testEngine(), predictor.New(), nil, newMemCache())
	if _, err := svc.History(context.Background(), "BTC", 10); err == nil {
		t.Fatal("expected error when no store is configured")
	}
}
