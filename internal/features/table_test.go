package features

import (
	"math"
	"testing"
	"time"

	"pythia/internal/domain"
)

func makeSeries(symbol string, closes []float64) domain.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c * 0.99,
			High:      c * 1.02,
			Low:       c * 0.98,
			Close:     c,
			Volume:    1000 + 10*float64(i),
		}
	}
	return domain.PriceSeries{Symbol: symbol, Bars: bars}
}

func waveCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + 8*math.Sin(float64(i)/5) + float64(i)*0.2
	}
	return out
}

func TestBuildRejectsEmptySeries(t *testing.T) {
	if _, err := Build(domain.PriceSeries{Symbol: "BTC"}); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestBuildLeavesNoNaNCells(t *testing.T) {
	table, err := Build(makeSeries("BTC", waveCloses(60)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 60 {
		t.Fatalf("expected 60 rows, got %d", table.Len())
	}
	for ci, col := range table.columns() {
		if len(col) != 60 {
			t.Fatalf("column %d has %d rows, expected 60", ci, len(col))
		}
		for ri, v := range col {
			if math.IsNaN(v) {
				t.Fatalf("NaN left in column %d row %d", ci, ri)
			}
		}
	}
}

func TestBuildSynthesizesMissingOHL(t *testing.T) {
	series := domain.PriceSeries{
		Symbol: "ETH",
		Bars: []domain.Bar{
			{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Close: 100},
			{Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Close: 105},
		},
	}
	table, err := Build(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Open[0] != 100 || table.High[0] != 100 || table.Low[0] != 100 {
		t.Fatalf("expected OHL synthesized from close, got O=%v H=%v L=%v", table.Open[0], table.High[0], table.Low[0])
	}
}

func TestBuildVolumelessSeriesGetsUnitSpike(t *testing.T) {
	series := makeSeries("SOL", waveCloses(40))
	for i := range series.Bars {
		series.Bars[i].Volume = 0
	}
	table, err := Build(series)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range table.VolumeSpike {
		if v != 1.0 {
			t.Fatalf("expected unit volume spike at %d, got %v", i, v)
		}
	}
	// Volatility proxy should replace volume change.
	for i := range table.VolumeChange {
		if table.VolumeChange[i] != table.Volatility[i] {
			t.Fatalf("expected volume change to mirror volatility at %d", i)
		}
	}
}

func TestPrefixSharesRowsUpToN(t *testing.T) {
	table, err := Build(makeSeries("BTC", waveCloses(50)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := table.Prefix(31)
	if p.Len() != 31 {
		t.Fatalf("expected 31 rows, got %d", p.Len())
	}
	if p.Close[30] != table.Close[30] {
		t.Fatal("prefix should share the underlying data")
	}
	if got := table.Prefix(999).Len(); got != 50 {
		t.Fatalf("oversized prefix should clamp to table length, got %d", got)
	}
}

func TestDivergenceFlags(t *testing.T) {
	rsi := []float64{60, 60, 60, 60, 60, 50}
	closes := []float64{100, 100, 100, 100, 100, 110}
	got := buildDivergence(closes, rsi)
	if got[5] != -1 {
		t.Fatalf("expected bearish divergence flag, got %v", got[5])
	}

	rsi = []float64{40, 40, 40, 40, 40, 55}
	closes = []float64{100, 100, 100, 100, 100, 90}
	got = buildDivergence(closes, rsi)
	if got[5] != 1 {
		t.Fatalf("expected bullish divergence flag, got %v", got[5])
	}
}

func TestTargetMarksNextBarDirection(t *testing.T) {
	got := buildTarget([]float64{1, 2, 1.5, 3})
	if got[0] != 1 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("unexpected target values: %v", got[:3])
	}
	if !math.IsNaN(got[3]) {
		t.Fatalf("last target should be NaN before fill, got %v", got[3])
	}
}

func TestBuildShortSeriesUsesNeutralDefaults(t *testing.T) {
	table, err := Build(makeSeries("BTC", []float64{100, 101, 102, 103, 104}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := table.Len() - 1
	if table.RSI[last] != 50 {
		t.Fatalf("all-NaN RSI column must default to the midline, got %v", table.RSI[last])
	}
	if table.StochK[last] != 50 || table.StochD[last] != 50 {
		t.Fatalf("all-NaN stochastic columns must default to the midline, got %v/%v", table.StochK[last], table.StochD[last])
	}
	if table.ADX[last] != 0 {
		t.Fatalf("all-NaN ADX column must default to zero, got %v", table.ADX[last])
	}
}
