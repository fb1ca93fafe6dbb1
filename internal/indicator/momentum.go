package indicator

import "math"

const (
	DefaultRSIPeriod      = 14
	DefaultStochRSIPeriod = 14
	DefaultStochRSISmooth = 3
)

// RSI computes the Relative Strength Index over a rolling window of gain
// and loss averages. When the average loss over the window is exactly zero
// the value caps at 100 instead of dividing by zero.
func RSI(values []float64, period int) []float64 {
	out := NaNSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	for i := period; i < len(values); i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)
		if avgLoss == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain / avgLoss
		out[i] = 100 - (100 / (1 + rs))
	}
	return out
}

// StochRSI normalizes RSI into a 0-100 band using the rolling min/max of
// RSI over period bars. A flat RSI window (max == min) yields 50 rather
// than NaN. Returns smoothed %K (SMA over kPeriod) and %D (SMA of %K over
// dPeriod).
func StochRSI(values []float64, period, kPeriod, dPeriod int) (k, d []float64) {
	rsi := RSI(values, period)
	raw := NaNSeries(len(values))

	minRSI := RollingMin(rsi, period)
	maxRSI := RollingMax(rsi, period)
	for i := range rsi {
		if math.IsNaN(rsi[i]) || math.IsNaN(minRSI[i]) || math.IsNaN(maxRSI[i]) {
			continue
		}
		span := maxRSI[i] - minRSI[i]
		if span == 0 {
			raw[i] = 50
			continue
		}
		raw[i] = 100 * (rsi[i] - minRSI[i]) / span
	}

	k = SMA(raw, kPeriod)
	d = SMA(k, dPeriod)
	return k, d
}
