package job

import (
	"context"
	"log"
	"time"

	"pythia/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRefreshInterval = 30 * time.Minute
	alertConfidence        = 80.0
)

type Forecaster interface {
	Analyze(ctx context.Context, symbol string, tf domain.Timeframe) (*domain.CompositeResult, error)
}

type WatchlistLister interface {
	List(ctx context.Context) ([]domain.WatchlistEntry, error)
}

type AlertNotifier interface {
	NotifyForecasts(ctx context.Context, results []domain.CompositeResult) error
}

// WatchlistRefresher periodically re-analyzes every watched symbol and
// pushes notable forecasts to subscribers.
type WatchlistRefresher struct {
	tracer    trace.Tracer
	analysis  Forecaster
	watchlist WatchlistLister
	alerts    AlertNotifier
	interval  time.Duration
}

func NewWatchlistRefresher(
	tracer trace.Tracer,
	analysis Forecaster,
	watchlist WatchlistLister,
	alerts AlertNotifier,
	interval time.Duration,
) *WatchlistRefresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &WatchlistRefresher{
		tracer:    tracer,
		analysis:  analysis,
		watchlist: watchlist,
		alerts:    alerts,
		interval:  interval,
	}
}

// Start launches the refresh loop. Blocks until ctx is cancelled.
func (r *WatchlistRefresher) Start(ctx context.Context) {
	if r.analysis == nil || r.watchlist == nil {
		log.Println("Watchlist refresher disabled: missing dependencies")
		<-ctx.Done()
		return
	}

	log.Println("Watchlist refresher starting...")
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Watchlist refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *WatchlistRefresher) refresh(ctx context.Context) {
	ctx, span := r.tracer.Start(ctx, "watchlist-refresher.refresh")
	defer span.End()

	entries, err := r.watchlist.List(ctx)
	if err != nil {
		log.Printf("watchlist refresh error: %v", err)
		return
	}

	var notable []domain.CompositeResult
	for _, entry := range entries {
		if ctx.Err() != nil {
			return
		}
		result, err := r.analysis.Analyze(ctx, entry.Symbol, domain.TimeframeMedium)
		if err != nil {
			log.Printf("watchlist analysis error for %s: %v", entry.Symbol, err)
			continue
		}
		if isNotable(*result) {
			notable = append(notable, *result)
		}
	}

	if r.alerts == nil || len(notable) == 0 {
		return
	}
	if err := r.alerts.NotifyForecasts(ctx, notable); err != nil {
		log.Printf("watchlist alert dispatch error: %v", err)
	}
}

// isNotable keeps alerts to directional calls the sources agree on, or
// any call with very high confidence.
func isNotable(r domain.CompositeResult) bool {
	if r.Prediction == domain.PredictionNeutral {
		return false
	}
	return r.Agreement == domain.AgreementStrong || r.Confidence >= alertConfidence
}
