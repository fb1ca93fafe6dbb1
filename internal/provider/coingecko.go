// Package provider fetches market data from CoinGecko.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"pythia/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://api.coingecko.com/api/v3"

var ErrInsufficientData = errors.New("insufficient data")

type CoinGeckoProvider struct {
	tracer  trace.Tracer
	client  *http.Client
	baseURL string
}

func NewCoinGeckoProvider(tracer trace.Tracer) *CoinGeckoProvider {
	return &CoinGeckoProvider{
		tracer:  tracer,
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultBaseURL,
	}
}

// NewCoinGeckoProviderWithBase is used by tests to point at a fake server.
func NewCoinGeckoProviderWithBase(tracer trace.Tracer, baseURL string) *CoinGeckoProvider {
	p := NewCoinGeckoProvider(tracer)
	p.baseURL = baseURL
	return p
}

type marketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// FetchDailySeries returns a daily close series for the symbol covering the
// given number of days. CoinGecko's market_chart endpoint only carries
// closes and volumes, so open/high/low are synthesized from adjacent
// closes. Ragged or duplicated points are collapsed to one bar per day.
func (p *CoinGeckoProvider) FetchDailySeries(ctx context.Context, symbol string, days int) (domain.PriceSeries, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-market-chart")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("days", days))

	id, ok := domain.CoinGeckoID[symbol]
	if !ok {
		return domain.PriceSeries{}, fmt.Errorf("unsupported symbol: %s", symbol)
	}

	url := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d&interval=daily", p.baseURL, id, days)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.PriceSeries{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.PriceSeries{}, fmt.Errorf("coingecko request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.PriceSeries{}, fmt.Errorf("coingecko returned %d for %s: %s", resp.StatusCode, symbol, string(body))
	}

	var chart marketChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("decoding coingecko response for %s: %w", symbol, err)
	}

	series := buildSeries(symbol, chart)
	if series.Len() == 0 {
		return domain.PriceSeries{}, fmt.Errorf("%w for %s", ErrInsufficientData, symbol)
	}
	return series, nil
}

func buildSeries(symbol string, chart marketChartResponse) domain.PriceSeries {
	type point struct {
		close  float64
		volume float64
	}
	byDay := make(map[int64]point, len(chart.Prices))

	for _, pair := range chart.Prices {
		if len(pair) < 2 {
			continue
		}
		day := dayKey(pair[0])
		p := byDay[day]
		p.close = pair[1]
		byDay[day] = p
	}
	for _, pair := range chart.TotalVolumes {
		if len(pair) < 2 {
			continue
		}
		day := dayKey(pair[0])
		p, ok := byDay[day]
		if !ok {
			continue
		}
		p.volume = pair[1]
		byDay[day] = p
	}

	days := make([]int64, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	bars := make([]domain.Bar, 0, len(days))
	prevClose := 0.0
	for _, day := range days {
		p := byDay[day]
		open := p.close
		if prevClose != 0 {
			open = prevClose
		}
		bars = append(bars, domain.Bar{
			Timestamp: time.Unix(day, 0).UTC(),
			Open:      open,
			High:      maxF(open, p.close),
			Low:       minF(open, p.close),
			Close:     p.close,
			Volume:    p.volume,
		})
		prevClose = p.close
	}
	return domain.PriceSeries{Symbol: symbol, Bars: bars}
}

func dayKey(ms float64) int64 {
	t := time.UnixMilli(int64(ms)).UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix()
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
