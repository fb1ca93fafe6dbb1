// Package indicator computes technical indicators over aligned float64
// series. Every function returns slices of the same length as its input,
// with math.NaN() marking positions before the lookback window is
// satisfied. Indicators never panic on short input: the result is simply
// all-NaN, and callers substitute their neutral defaults.
package indicator

import "math"

// NaNSeries returns a slice of n NaN values.
func NaNSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// SMA computes a simple moving average with NaN for the first period-1
// slots. A window containing NaN yields NaN, so warm-up regions of chained
// indicators stay marked as undefined.
func SMA(values []float64, period int) []float64 {
	out := NaNSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		defined := true
		for _, v := range values[i-period+1 : i+1] {
			if math.IsNaN(v) {
				defined = false
				break
			}
			sum += v
		}
		if defined {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA computes a recursive exponential moving average with smoothing
// 2/(period+1). The first value seeds from the raw input, matching the
// adjust=false recursion, so a constant series stays constant everywhere.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return NaNSeries(len(values))
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// RollingStd computes the rolling population standard deviation.
func RollingStd(values []float64, period int) []float64 {
	out := NaNSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		_, std := MeanStd(values[i-period+1 : i+1])
		out[i] = std
	}
	return out
}

// RollingMin computes the rolling minimum over period values.
func RollingMin(values []float64, period int) []float64 {
	out := NaNSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		m := values[i-period+1]
		for _, v := range values[i-period+2 : i+1] {
			if math.IsNaN(v) {
				m = math.NaN()
				break
			}
			if v < m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

// RollingMax computes the rolling maximum over period values.
func RollingMax(values []float64, period int) []float64 {
	out := NaNSeries(len(values))
	if period <= 0 || len(values) < period {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		m := values[i-period+1]
		for _, v := range values[i-period+2 : i+1] {
			if math.IsNaN(v) {
				m = math.NaN()
				break
			}
			if v > m {
				m = v
			}
		}
		out[i] = m
	}
	return out
}

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	if len(values) == 1 {
		return mean, 0
	}
	for _, v := range values {
		d := v - mean
		std += d * d
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, std
}
