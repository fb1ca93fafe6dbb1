package indicator

import "math"

const (
	DefaultBollingerWindow = 20
	DefaultBollingerMult   = 2.0
)

// Bollinger computes Bollinger Bands: middle = SMA(window), high/low =
// middle +/- mult * rolling stdev, width = (high-low)/middle.
func Bollinger(values []float64, window int, mult float64) (high, mid, low, width []float64) {
	mid = SMA(values, window)
	std := RollingStd(values, window)

	n := len(values)
	high = NaNSeries(n)
	low = NaNSeries(n)
	width = NaNSeries(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(mid[i]) || math.IsNaN(std[i]) {
			continue
		}
		high[i] = mid[i] + mult*std[i]
		low[i] = mid[i] - mult*std[i]
		if mid[i] != 0 {
			width[i] = (high[i] - low[i]) / mid[i]
		}
	}
	return high, mid, low, width
}
