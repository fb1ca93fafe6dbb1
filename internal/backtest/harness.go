// Package backtest replays a prediction strategy over historical bars and
// measures it against a buy-and-hold benchmark.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"pythia/internal/domain"
	"pythia/internal/features"
)

const (
	// Bars reserved at the start of the series so indicators have a
	// full lookback before the first prediction.
	warmupBars = 30
	// The walk advances three bars per prediction to bound work.
	stepBars = 3

	initialCapital  = 10000.0
	defaultMaxSteps = 500
)

var (
	ErrInsufficientData = errors.New("insufficient data to run backtest")
	ErrNoTrades         = errors.New("no valid trades generated during backtest")
)

// Prediction is one strategy verdict produced during the walk.
type Prediction struct {
	Label      domain.Prediction
	Confidence float64
	Reason     string
}

// PredictFunc computes a prediction from only the data known so far.
type PredictFunc func(ctx context.Context, known *features.Table) (Prediction, error)

// Harness walks forward through a feature table, predicting at every third
// bar and comparing each prediction against the realized close a fixed
// number of bars ahead.
type Harness struct {
	predict  PredictFunc
	maxSteps int
	now      func() time.Time
}

func NewHarness(predict PredictFunc, maxSteps int, now func() time.Time) *Harness {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	if now == nil {
		now = time.Now
	}
	return &Harness{predict: predict, maxSteps: maxSteps, now: now}
}

// Run executes the full walk. A single failed prediction step degrades to
// Neutral and the walk continues; cancellation of ctx aborts the run.
func (h *Harness) Run(ctx context.Context, series domain.PriceSeries, period string, intervalDays int) (*domain.BacktestReport, error) {
	if series.Len() < warmupBars {
		return nil, fmt.Errorf("%w: %d bars for %s, need at least %d", ErrInsufficientData, series.Len(), series.Symbol, warmupBars)
	}

	table, err := features.Build(series)
	if err != nil {
		return nil, fmt.Errorf("building features for backtest: %w", err)
	}

	trades := make([]domain.Trade, 0, h.maxSteps)
	n := table.Len()
	steps := 0
	for i := warmupBars; i < n-intervalDays && steps < h.maxSteps; i += stepBars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		steps++

		known := table.Prefix(i + 1)
		pred, err := h.predict(ctx, known)
		if err != nil {
			log.Printf("Warning: backtest step at bar %d failed, treating as neutral: %v", i, err)
			pred = Prediction{Label: domain.PredictionNeutral, Confidence: 50, Reason: "prediction failed for this step"}
		}

		current := table.Close[i]
		future := table.Close[i+intervalDays]
		actualReturn := 0.0
		if current != 0 {
			actualReturn = (future/current - 1) * 100
		}

		trades = append(trades, domain.Trade{
			Date:         table.Timestamps[i],
			Prediction:   pred.Label,
			Confidence:   pred.Confidence,
			Price:        current,
			FuturePrice:  future,
			ActualReturn: actualReturn,
			Outcome:      classify(pred.Label, actualReturn),
			Reason:       pred.Reason,
		})
	}

	if len(trades) == 0 {
		return nil, ErrNoTrades
	}
	return h.buildReport(series.Symbol, period, intervalDays, trades), nil
}

func classify(label domain.Prediction, actualReturn float64) domain.Outcome {
	switch {
	case label == domain.PredictionNeutral:
		return domain.OutcomeNeutral
	case label == domain.PredictionBullish && actualReturn > 0:
		return domain.OutcomeSuccess
	case label == domain.PredictionBearish && actualReturn < 0:
		return domain.OutcomeSuccess
	default:
		return domain.OutcomeFailure
	}
}

// buildReport simulates the portfolio: Bullish compounds the realized
// return, Bearish sits in cash, Neutral holds. The benchmark buys at the
// first trade price and holds to the last.
func (h *Harness) buildReport(symbol, period string, intervalDays int, trades []domain.Trade) *domain.BacktestReport {
	var successful, failed, neutral int
	portfolio := initialCapital
	for _, t := range trades {
		switch t.Outcome {
		case domain.OutcomeSuccess:
			successful++
		case domain.OutcomeFailure:
			failed++
		default:
			neutral++
		}
		if t.Prediction == domain.PredictionBullish {
			portfolio *= 1 + t.ActualReturn/100
		}
	}

	holdReturn := 0.0
	if first := trades[0].Price; first != 0 {
		holdReturn = (trades[len(trades)-1].Price/first - 1) * 100
	}
	portfolioReturn := (portfolio/initialCapital - 1) * 100

	return &domain.BacktestReport{
		Symbol:              symbol,
		Period:              period,
		IntervalDays:        intervalDays,
		NumTrades:           len(trades),
		SuccessfulTrades:    successful,
		FailedTrades:        failed,
		NeutralTrades:       neutral,
		SuccessRate:         round2(float64(successful) / float64(len(trades)) * 100),
		InitialCapital:      initialCapital,
		FinalPortfolioValue: round2(portfolio),
		PortfolioReturn:     round2(portfolioReturn),
		HoldReturn:          round2(holdReturn),
		Alpha:               round2(portfolioReturn - holdReturn),
		Trades:              trades,
		GeneratedAt:         h.now().UTC(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
