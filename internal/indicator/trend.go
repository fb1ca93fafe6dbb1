package indicator

import "math"

const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
	DefaultADXPeriod  = 14
	DefaultCrossShort = 50
	DefaultCrossLong  = 200
)

// MACD returns the MACD line (fast EMA minus slow EMA), the signal line
// (EMA of the MACD line) and the histogram (line minus signal).
func MACD(values []float64, fast, slow, signal int) (line, sig, hist []float64) {
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	line = make([]float64, len(values))
	for i := range values {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	sig = EMA(line, signal)

	hist = make([]float64, len(values))
	for i := range values {
		hist[i] = line[i] - sig[i]
	}
	return line, sig, hist
}

// Crossover describes the relative position of a short and a long EMA at
// the last bar, and whether they crossed strictly between the last two bars.
type Crossover struct {
	ShortEMA    float64
	LongEMA     float64
	PrevShort   float64
	PrevLong    float64
	GoldenCross bool
	DeathCross  bool
	Bullish     bool
}

// EMACrossover computes golden/death cross state from the last two bars.
func EMACrossover(values []float64, shortPeriod, longPeriod int) Crossover {
	if len(values) == 0 {
		return Crossover{}
	}
	shortEMA := EMA(values, shortPeriod)
	longEMA := EMA(values, longPeriod)

	n := len(values)
	out := Crossover{
		ShortEMA: shortEMA[n-1],
		LongEMA:  longEMA[n-1],
	}
	out.Bullish = out.ShortEMA > out.LongEMA
	if n < 2 {
		return out
	}
	out.PrevShort = shortEMA[n-2]
	out.PrevLong = longEMA[n-2]
	out.GoldenCross = out.PrevShort < out.PrevLong && out.ShortEMA > out.LongEMA
	out.DeathCross = out.PrevShort > out.PrevLong && out.ShortEMA < out.LongEMA
	return out
}

// ADX computes the Average Directional Index with its +DI and -DI
// components using Wilder smoothing. Values before 2*period bars are NaN.
func ADX(high, low, closes []float64, period int) (adx, plusDI, minusDI []float64) {
	n := len(closes)
	adx = NaNSeries(n)
	plusDI = NaNSeries(n)
	minusDI = NaNSeries(n)
	if period <= 0 || n < 2*period+1 || len(high) != n || len(low) != n {
		return adx, plusDI, minusDI
	}

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := high[i] - high[i-1]
		downMove := low[i-1] - low[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
		tr[i] = trueRange(high[i], low[i], closes[i-1])
	}

	smoothPlus := wilderSmooth(plusDM, period)
	smoothMinus := wilderSmooth(minusDM, period)
	smoothTR := wilderSmooth(tr, period)

	dx := NaNSeries(n)
	for i := period; i < n; i++ {
		if math.IsNaN(smoothTR[i]) || smoothTR[i] == 0 {
			continue
		}
		plusDI[i] = 100 * smoothPlus[i] / smoothTR[i]
		minusDI[i] = 100 * smoothMinus[i] / smoothTR[i]
		diSum := plusDI[i] + minusDI[i]
		if diSum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / diSum
		} else {
			dx[i] = 0
		}
	}

	// First ADX is the plain average of the first period DX values, then
	// Wilder smoothing takes over.
	var dxSum float64
	for i := period + 1; i <= 2*period; i++ {
		if math.IsNaN(dx[i]) {
			dxSum += 0
		} else {
			dxSum += dx[i]
		}
	}
	adx[2*period] = dxSum / float64(period)
	for i := 2*period + 1; i < n; i++ {
		d := dx[i]
		if math.IsNaN(d) {
			d = 0
		}
		adx[i] = (adx[i-1]*float64(period-1) + d) / float64(period)
	}
	return adx, plusDI, minusDI
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if hc := math.Abs(high - prevClose); hc > tr {
		tr = hc
	}
	if lc := math.Abs(low - prevClose); lc > tr {
		tr = lc
	}
	return tr
}

func wilderSmooth(values []float64, period int) []float64 {
	out := NaNSeries(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}
	sum := 0.0
	for i := 1; i <= period; i++ {
		sum += values[i]
	}
	out[period] = sum
	for i := period + 1; i < len(values); i++ {
		out[i] = out[i-1] - out[i-1]/float64(period) + values[i]
	}
	return out
}
