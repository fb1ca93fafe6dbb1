package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"pythia/internal/domain"
)

func TestPredictionRunMigrationsCreatesTableAndIndex(t *testing.T) {
	pool := &stubPool{}
	repo := NewPredictionRepository(pool, testTracer())

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 2 {
		t.Fatalf("expected table and index statements, got %d", len(pool.execSQL))
	}
	if !strings.Contains(pool.execSQL[1], "idx_predictions_symbol_created") {
		t.Fatalf("expected index statement, got %q", pool.execSQL[1])
	}
}

func TestPredictionInsertReturnsRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	pool := &stubPool{rowData: []any{
		int64(7), "BTC", "1d", "Bullish", 6.9, 94.5, "Strong", now,
	}}
	repo := NewPredictionRepository(pool, testTracer())

	rec, err := repo.Insert(context.Background(), domain.CompositeResult{
		Symbol:     "BTC",
		Timeframe:  domain.TimeframeMedium,
		Prediction: domain.PredictionBullish,
		Score:      6.9,
		Confidence: 94.5,
		Agreement:  domain.AgreementStrong,
		AnalyzedAt: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != 7 || rec.Symbol != "BTC" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Timeframe != domain.TimeframeMedium || rec.Prediction != domain.PredictionBullish || rec.Agreement != domain.AgreementStrong {
		t.Fatalf("typed columns not restored: %+v", rec)
	}
}

func TestPredictionListFiltersBySymbol(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	pool := &stubPool{rowsData: [][]any{
		{int64(2), "ETH", "1h", "Bearish", -3.1, 70.0, "Moderate", now},
	}}
	repo := NewPredictionRepository(pool, testTracer())

	records, err := repo.List(context.Background(), "eth", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Prediction != domain.PredictionBearish || records[0].Timeframe != domain.TimeframeShort {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if !strings.Contains(pool.querySQL, "WHERE symbol = $1") {
		t.Fatalf("expected symbol filter in query, got %q", pool.querySQL)
	}
	if pool.queryArgs[0] != "ETH" {
		t.Fatalf("expected uppercased symbol arg, got %v", pool.queryArgs[0])
	}
}

func TestPredictionListClampsLimit(t *testing.T) {
	pool := &stubPool{}
	repo := NewPredictionRepository(pool, testTracer())

	if _, err := repo.List(context.Background(), "", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.List(context.Background(), "", 9999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
