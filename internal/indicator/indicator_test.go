package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMAWindowAverages(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	sma := SMA(values, 3)

	if !math.IsNaN(sma[0]) || !math.IsNaN(sma[1]) {
		t.Fatalf("expected NaN before window fills, got %v", sma[:2])
	}
	if !almostEqual(sma[2], 2) || !almostEqual(sma[3], 3) || !almostEqual(sma[4], 4) {
		t.Fatalf("unexpected SMA values: %v", sma)
	}
}

func TestEMAConstantSeriesStaysFlat(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 42.0
	}
	ema := EMA(values, 12)
	for i, v := range ema {
		if !almostEqual(v, 42.0) {
			t.Fatalf("ema[%d] = %v, expected 42", i, v)
		}
	}
}

func TestRSIStaysWithinBounds(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 100 + 10*math.Sin(float64(i)/3)
	}
	rsi := RSI(values, DefaultRSIPeriod)
	for i, v := range rsi {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 || v > 100 {
			t.Fatalf("rsi[%d] = %v out of [0, 100]", i, v)
		}
	}
}

func TestRSIMonotonicRiseIsMax(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i + 1)
	}
	rsi := RSI(values, DefaultRSIPeriod)
	last := rsi[len(rsi)-1]
	if !almostEqual(last, 100) {
		t.Fatalf("expected RSI 100 on a zero-loss series, got %v", last)
	}
}

func TestMACDHistogramIdentity(t *testing.T) {
	values := make([]float64, 120)
	for i := range values {
		values[i] = 50 + 5*math.Sin(float64(i)/7) + float64(i)*0.1
	}
	line, sig, hist := MACD(values, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	for i := range values {
		if math.IsNaN(hist[i]) {
			continue
		}
		if !almostEqual(hist[i], line[i]-sig[i]) {
			t.Fatalf("hist[%d] = %v, expected line-signal = %v", i, hist[i], line[i]-sig[i])
		}
	}
}

func TestBollingerBandOrdering(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 100 + 3*math.Sin(float64(i)/2)
	}
	high, mid, low, width := Bollinger(values, DefaultBollingerWindow, DefaultBollingerMult)
	for i := range values {
		if math.IsNaN(mid[i]) {
			continue
		}
		if high[i] < mid[i] || mid[i] < low[i] {
			t.Fatalf("band ordering violated at %d: high=%v mid=%v low=%v", i, high[i], mid[i], low[i])
		}
		if width[i] < 0 {
			t.Fatalf("negative band width at %d: %v", i, width[i])
		}
	}
}

func TestStochRSIFlatSeriesReadsNeutral(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 25.0
	}
	k, d := StochRSI(values, DefaultStochRSIPeriod, DefaultStochRSISmooth, DefaultStochRSISmooth)
	gotK, gotD := k[len(k)-1], d[len(d)-1]
	if !almostEqual(gotK, 50) || !almostEqual(gotD, 50) {
		t.Fatalf("expected 50/50 on a flat series, got k=%v d=%v", gotK, gotD)
	}
}

func TestADXWarmupThenValues(t *testing.T) {
	n := 80
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i)
		high[i] = base + 2
		low[i] = base - 2
		closes[i] = base
	}
	adx, plusDI, minusDI := ADX(high, low, closes, DefaultADXPeriod)

	if !math.IsNaN(adx[DefaultADXPeriod]) {
		t.Fatalf("expected NaN adx during warmup, got %v", adx[DefaultADXPeriod])
	}
	last := len(adx) - 1
	if math.IsNaN(adx[last]) || adx[last] < 0 || adx[last] > 100 {
		t.Fatalf("adx out of range: %v", adx[last])
	}
	// Sustained uptrend: +DI should dominate.
	if plusDI[last] <= minusDI[last] {
		t.Fatalf("expected +DI > -DI in an uptrend, got +DI=%v -DI=%v", plusDI[last], minusDI[last])
	}
}

func TestOBVAccumulatesByDirection(t *testing.T) {
	closes := []float64{10, 11, 10.5, 10.5, 12}
	volumes := []float64{100, 200, 150, 50, 300}
	obv := OBV(closes, volumes)

	want := []float64{100, 300, 150, 150, 450}
	for i := range want {
		if !almostEqual(obv[i], want[i]) {
			t.Fatalf("obv[%d] = %v, want %v", i, obv[i], want[i])
		}
	}
}

func TestRollingMinMax(t *testing.T) {
	values := []float64{5, 3, 8, 1, 9}
	minS := RollingMin(values, 3)
	maxS := RollingMax(values, 3)

	if !almostEqual(minS[4], 1) || !almostEqual(maxS[4], 9) {
		t.Fatalf("unexpected rolling extremes: min=%v max=%v", minS[4], maxS[4])
	}
	if !math.IsNaN(minS[1]) || !math.IsNaN(maxS[1]) {
		t.Fatal("expected NaN before window fills")
	}
}
