package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"pythia/internal/domain"
	"pythia/internal/features"
)

func risingSeries(n int) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, n)
	for i := range bars {
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Close:     100 + float64(i),
			Volume:    1000,
		}
	}
	return domain.PriceSeries{Symbol: "BTC", Bars: bars}
}

func alwaysPredict(label domain.Prediction) PredictFunc {
	return func(context.Context, *features.Table) (Prediction, error) {
		return Prediction{Label: label, Confidence: 80, Reason: "fixed strategy"}, nil
	}
}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func TestRunRejectsShortSeries(t *testing.T) {
	h := NewHarness(alwaysPredict(domain.PredictionBullish), 0, fixedClock)
	_, err := h.Run(context.Background(), risingSeries(20), "1m", 7)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestRunWalksEveryThirdBar(t *testing.T) {
	h := NewHarness(alwaysPredict(domain.PredictionBullish), 0, fixedClock)
	report, err := h.Run(context.Background(), risingSeries(100), "3m", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Steps at i = 30, 33, ..., < 93: ceil((93-30)/3) = 21 trades.
	if report.NumTrades != 21 {
		t.Fatalf("expected 21 trades, got %d", report.NumTrades)
	}
	if !report.Trades[0].Date.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first trade should land on bar 30, got %v", report.Trades[0].Date)
	}
}

func TestRunBullishOnRisingSeriesBeatsNothing(t *testing.T) {
	h := NewHarness(alwaysPredict(domain.PredictionBullish), 0, fixedClock)
	report, err := h.Run(context.Background(), risingSeries(100), "3m", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SuccessRate != 100 {
		t.Fatalf("every bullish call should succeed on a rising series, got %.1f%%", report.SuccessRate)
	}
	if report.FinalPortfolioValue <= report.InitialCapital {
		t.Fatalf("portfolio should compound upward, got %v", report.FinalPortfolioValue)
	}
	if report.HoldReturn <= 0 {
		t.Fatalf("hold benchmark should be positive on a rising series, got %v", report.HoldReturn)
	}
	if !report.GeneratedAt.Equal(fixedClock()) {
		t.Fatalf("expected injected clock, got %v", report.GeneratedAt)
	}
}

func TestRunBearishOnRisingSeriesFails(t *testing.T) {
	h := NewHarness(alwaysPredict(domain.PredictionBearish), 0, fixedClock)
	report, err := h.Run(context.Background(), risingSeries(100), "3m", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.SuccessRate != 0 {
		t.Fatalf("every bearish call should fail on a rising series, got %.1f%%", report.SuccessRate)
	}
	// Bearish sits in cash: no compounding either way.
	if report.FinalPortfolioValue != report.InitialCapital {
		t.Fatalf("cash portfolio should be unchanged, got %v", report.FinalPortfolioValue)
	}
	if report.Alpha >= 0 {
		t.Fatalf("sitting out a rally should have negative alpha, got %v", report.Alpha)
	}
}

func TestRunNeutralCallsAreCounted(t *testing.T) {
	h := NewHarness(alwaysPredict(domain.PredictionNeutral), 0, fixedClock)
	report, err := h.Run(context.Background(), risingSeries(100), "3m", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.NeutralTrades != report.NumTrades {
		t.Fatalf("expected all trades neutral, got %d of %d", report.NeutralTrades, report.NumTrades)
	}
	if report.SuccessRate != 0 {
		t.Fatalf("neutral calls count against the success rate, got %v", report.SuccessRate)
	}
}

func TestRunMaxStepsBoundsWork(t *testing.T) {
	h := NewHarness(alwaysPredict(domain.PredictionBullish), 5, fixedClock)
	report, err := h.Run(context.Background(), risingSeries(200), "6m", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.NumTrades != 5 {
		t.Fatalf("expected 5 trades under the step cap, got %d", report.NumTrades)
	}
}

func TestRunFailedStepDegradesToNeutral(t *testing.T) {
	calls := 0
	flaky := func(context.Context, *features.Table) (Prediction, error) {
		calls++
		if calls%2 == 0 {
			return Prediction{}, errors.New("model unavailable")
		}
		return Prediction{Label: domain.PredictionBullish, Confidence: 80}, nil
	}
	h := NewHarness(flaky, 0, fixedClock)
	report, err := h.Run(context.Background(), risingSeries(100), "3m", 7)
	if err != nil {
		t.Fatalf("a failing step must not abort the walk: %v", err)
	}
	if report.NeutralTrades == 0 {
		t.Fatal("failed steps should be recorded as neutral trades")
	}
	if report.SuccessfulTrades == 0 {
		t.Fatal("successful steps should still be recorded")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := NewHarness(alwaysPredict(domain.PredictionBullish), 0, fixedClock)
	if _, err := h.Run(ctx, risingSeries(100), "3m", 7); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClassifyOutcomes(t *testing.T) {
	cases := []struct {
		label  domain.Prediction
		ret    float64
		want   domain.Outcome
	}{
		{domain.PredictionBullish, 2.5, domain.OutcomeSuccess},
		{domain.PredictionBullish, -1.0, domain.OutcomeFailure},
		{domain.PredictionBearish, -2.5, domain.OutcomeSuccess},
		{domain.PredictionBearish, 1.0, domain.OutcomeFailure},
		{domain.PredictionNeutral, 5.0, domain.OutcomeNeutral},
	}
	for _, tc := range cases {
		if got := classify(tc.label, tc.ret); got != tc.want {
			t.Fatalf("classify(%s, %v) = %s, want %s", tc.label, tc.ret, got, tc.want)
		}
	}
}
