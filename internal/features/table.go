// Package features augments a raw OHLCV series with the full indicator
// battery plus engineered columns (rolling stats, volume spikes, divergence
// flags). The resulting table is fully filled: after back-fill, forward-fill
// and a per-column neutral default no NaN cells remain, so callers can
// always index the last row safely.
package features

import (
	"errors"
	"math"
	"time"

	"pythia/internal/domain"
	"pythia/internal/indicator"
)

var ErrEmptySeries = errors.New("cannot build features from an empty price series")

const (
	shortRollingWindow = 5
	longRollingWindow  = 10
	divergenceLookback = 5
)

// Table holds one column per indicator or engineered feature, all aligned
// to the originating price series.
type Table struct {
	Symbol     string
	Timestamps []time.Time

	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
	Volume []float64

	RSI        []float64
	MACD       []float64
	MACDSignal []float64
	MACDHist   []float64
	EMA12      []float64
	EMA26      []float64
	BBHigh     []float64
	BBMid      []float64
	BBLow      []float64
	BBWidth    []float64
	StochK     []float64
	StochD     []float64
	ADX        []float64
	PlusDI     []float64
	MinusDI    []float64
	OBV        []float64

	Close5Mean  []float64
	Close10Mean []float64
	Close5Std   []float64
	Close10Std  []float64
	DailySpread []float64
	VolumeSpike []float64
	Divergence  []float64

	PriceChange  []float64
	Volatility   []float64
	VolumeChange []float64
	Target       []float64
}

func (t *Table) Len() int { return len(t.Close) }

// Prefix returns a view over the first n rows, sharing the underlying
// arrays. It is how the backtest harness exposes only data known so far.
func (t *Table) Prefix(n int) *Table {
	if n > t.Len() {
		n = t.Len()
	}
	out := &Table{Symbol: t.Symbol, Timestamps: t.Timestamps[:n]}
	src := t.columns()
	dst := out.columnPtrs()
	for i := range src {
		*dst[i] = src[i][:n]
	}
	return out
}

// Build computes every indicator and engineered feature for the series.
// Missing Open/High/Low values are synthesized from Close and missing
// volume is treated as zero, never as an error.
func Build(series domain.PriceSeries) (*Table, error) {
	if series.Len() == 0 {
		return nil, ErrEmptySeries
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}

	n := series.Len()
	t := &Table{
		Symbol:     series.Symbol,
		Timestamps: make([]time.Time, n),
		Open:       make([]float64, n),
		High:       make([]float64, n),
		Low:        make([]float64, n),
		Close:      make([]float64, n),
		Volume:     make([]float64, n),
	}
	for i, bar := range series.Bars {
		t.Timestamps[i] = bar.Timestamp
		t.Close[i] = bar.Close
		t.Open[i] = synthesize(bar.Open, bar.Close)
		t.High[i] = synthesize(bar.High, bar.Close)
		t.Low[i] = synthesize(bar.Low, bar.Close)
		t.Volume[i] = bar.Volume
	}

	t.RSI = indicator.RSI(t.Close, indicator.DefaultRSIPeriod)
	t.MACD, t.MACDSignal, t.MACDHist = indicator.MACD(t.Close, indicator.DefaultMACDFast, indicator.DefaultMACDSlow, indicator.DefaultMACDSignal)
	t.EMA12 = indicator.EMA(t.Close, 12)
	t.EMA26 = indicator.EMA(t.Close, 26)
	t.BBHigh, t.BBMid, t.BBLow, t.BBWidth = indicator.Bollinger(t.Close, indicator.DefaultBollingerWindow, indicator.DefaultBollingerMult)
	t.StochK, t.StochD = indicator.StochRSI(t.Close, indicator.DefaultStochRSIPeriod, indicator.DefaultStochRSISmooth, indicator.DefaultStochRSISmooth)
	t.ADX, t.PlusDI, t.MinusDI = indicator.ADX(t.High, t.Low, t.Close, indicator.DefaultADXPeriod)
	t.OBV = indicator.OBV(t.Close, t.Volume)

	t.Close5Mean = indicator.SMA(t.Close, shortRollingWindow)
	t.Close10Mean = indicator.SMA(t.Close, longRollingWindow)
	t.Close5Std = indicator.RollingStd(t.Close, shortRollingWindow)
	t.Close10Std = indicator.RollingStd(t.Close, longRollingWindow)

	t.DailySpread = make([]float64, n)
	for i := 0; i < n; i++ {
		if t.Close[i] != 0 {
			t.DailySpread[i] = (t.High[i] - t.Low[i]) / t.Close[i]
		}
	}

	t.VolumeSpike = buildVolumeSpike(t.Volume)
	t.PriceChange = pctChange(t.Close)
	t.Volatility = indicator.RollingStd(t.PriceChange, shortRollingWindow)
	t.VolumeChange = buildVolumeChange(t.Volume, t.Volatility)
	t.Divergence = buildDivergence(t.Close, t.RSI)
	t.Target = buildTarget(t.Close)

	t.fillMissing()
	return t, nil
}

func synthesize(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}

func buildVolumeSpike(volume []float64) []float64 {
	out := make([]float64, len(volume))
	hasVolume := false
	for _, v := range volume {
		if v != 0 {
			hasVolume = true
			break
		}
	}
	if !hasVolume {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}

	mean5 := indicator.SMA(volume, shortRollingWindow)
	for i := range volume {
		if math.IsNaN(mean5[i]) || mean5[i] == 0 {
			out[i] = 1.0
			continue
		}
		out[i] = volume[i] / mean5[i]
	}
	return out
}

func pctChange(values []float64) []float64 {
	out := indicator.NaNSeries(len(values))
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i] = values[i]/values[i-1] - 1
		}
	}
	return out
}

// buildVolumeChange falls back to price volatility as a proxy when there is
// no volume data at all.
func buildVolumeChange(volume, volatility []float64) []float64 {
	hasVolume := false
	for _, v := range volume {
		if v != 0 {
			hasVolume = true
			break
		}
	}
	if !hasVolume {
		out := make([]float64, len(volatility))
		copy(out, volatility)
		return out
	}
	return pctChange(volume)
}

// buildDivergence flags bearish divergence (-1: price up, RSI down over 5
// bars), bullish divergence (+1: price down, RSI up) or none (0).
func buildDivergence(closes, rsi []float64) []float64 {
	out := make([]float64, len(closes))
	for i := divergenceLookback; i < len(closes); i++ {
		if math.IsNaN(rsi[i]) || math.IsNaN(rsi[i-divergenceLookback]) {
			continue
		}
		priceDiff := closes[i] - closes[i-divergenceLookback]
		rsiDiff := rsi[i] - rsi[i-divergenceLookback]
		switch {
		case priceDiff > 0 && rsiDiff < 0:
			out[i] = -1
		case priceDiff < 0 && rsiDiff > 0:
			out[i] = 1
		}
	}
	return out
}

func buildTarget(closes []float64) []float64 {
	out := indicator.NaNSeries(len(closes))
	for i := 0; i < len(closes)-1; i++ {
		if closes[i+1] > closes[i] {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return out
}

// fillMissing removes every NaN cell: back-fill, then forward-fill, then
// the column's neutral default. Oscillators default to their midline so a
// column with no values at all never reads as an extreme.
func (t *Table) fillMissing() {
	defaults := map[*[]float64]float64{
		&t.RSI:    50,
		&t.StochK: 50,
		&t.StochD: 50,
	}
	for _, colPtr := range t.columnPtrs() {
		col := *colPtr
		for i := len(col) - 2; i >= 0; i-- {
			if math.IsNaN(col[i]) && !math.IsNaN(col[i+1]) {
				col[i] = col[i+1]
			}
		}
		for i := 1; i < len(col); i++ {
			if math.IsNaN(col[i]) && !math.IsNaN(col[i-1]) {
				col[i] = col[i-1]
			}
		}
		for i := range col {
			if math.IsNaN(col[i]) {
				col[i] = defaults[colPtr]
			}
		}
	}
}

func (t *Table) columns() [][]float64 {
	out := make([][]float64, 0, 32)
	for _, ptr := range t.columnPtrs() {
		out = append(out, *ptr)
	}
	return out
}

func (t *Table) columnPtrs() []*[]float64 {
	return []*[]float64{
		&t.Open, &t.High, &t.Low, &t.Close, &t.Volume,
		&t.RSI, &t.MACD, &t.MACDSignal, &t.MACDHist, &t.EMA12, &t.EMA26,
		&t.BBHigh, &t.BBMid, &t.BBLow, &t.BBWidth, &t.StochK, &t.StochD,
		&t.ADX, &t.PlusDI, &t.MinusDI, &t.OBV,
		&t.Close5Mean, &t.Close10Mean, &t.Close5Std, &t.Close10Std,
		&t.DailySpread, &t.VolumeSpike, &t.Divergence,
		&t.PriceChange, &t.Volatility, &t.VolumeChange, &t.Target,
	}
}
