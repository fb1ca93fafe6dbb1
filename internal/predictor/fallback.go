// Package predictor provides the fallback prediction path used when the
// full multi-signal analysis cannot run: a small neural classifier over
// engineered features, with a deterministic rule cascade behind it.
package predictor

import (
	"fmt"
	"math"

	"github.com/goml/gobrain"
	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"

	"pythia/internal/domain"
	"pythia/internal/features"
)

const (
	minTrainingRows = 30

	hiddenNodes    = 8
	trainEpochs    = 300
	trainRate      = 0.4
	trainMomentum  = 0.1
	bullishProb    = 0.6
	bearishProb    = 0.4
	maxConfidence  = 99.9
	ruleConfidence = 70

	anomalyThreshold = 0.62
	anomalyDampMax   = 0.65
	anomalyTrees     = 50
	anomalySamples   = 64
)

// Result is a fallback prediction: label, 0-100 confidence and a reason.
type Result struct {
	Label      domain.Prediction `json:"prediction"`
	Confidence float64           `json:"confidence"`
	Reason     string            `json:"reason"`
}

// Fallback holds no state between calls; the classifier and anomaly forest
// are trained fresh per invocation so concurrent callers never share a model.
type Fallback struct{}

func New() *Fallback { return &Fallback{} }

// Predict runs the ML tier when at least 30 training rows exist and the
// rule cascade otherwise. The ML tier never aborts the call: any failure
// degrades to the rules.
func (f *Fallback) Predict(t *features.Table) Result {
	if t == nil || t.Len() < 5 {
		return Result{Label: domain.PredictionNeutral, Confidence: 50, Reason: "Insufficient data for prediction"}
	}

	samples, targets, latest := trainingData(t)
	if len(samples) < minTrainingRows {
		return ruleBased(t)
	}

	result, ok := f.predictML(samples, targets, latest, t.RSI[t.Len()-1])
	if !ok {
		return ruleBased(t)
	}
	return result
}

// trainingData extracts {rsi, volatility, volume change, price change}
// rows. The final row carries no realized next-bar target, so it is used
// only for inference.
func trainingData(t *features.Table) (samples [][]float64, targets []float64, latest []float64) {
	n := t.Len()
	for i := 0; i < n; i++ {
		row := []float64{t.RSI[i], t.Volatility[i], t.VolumeChange[i], t.PriceChange[i]}
		if hasBadValue(row) {
			continue
		}
		if i == n-1 {
			latest = row
			continue
		}
		samples = append(samples, row)
		targets = append(targets, t.Target[i])
	}
	return samples, targets, latest
}

func (f *Fallback) predictML(samples [][]float64, targets []float64, latest []float64, rsi float64) (Result, bool) {
	if len(latest) == 0 {
		return Result{}, false
	}

	means, stds := fitScaler(samples)
	scaled := make([][]float64, len(samples))
	for i := range samples {
		scaled[i] = scale(samples[i], means, stds)
	}
	latestScaled := scale(latest, means, stds)

	patterns := make([][][]float64, len(scaled))
	for i := range scaled {
		patterns[i] = [][]float64{scaled[i], {targets[i]}}
	}

	net := &gobrain.FeedForward{}
	net.Init(len(latestScaled), hiddenNodes, 1)
	net.Train(patterns, trainEpochs, trainRate, trainMomentum, false)

	out := net.Update(latestScaled)
	if len(out) == 0 || math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return Result{}, false
	}
	prob := math.Max(0, math.Min(1, out[0]))

	var result Result
	switch {
	case prob > bullishProb:
		result.Label = domain.PredictionBullish
		result.Confidence = math.Min(math.Round(prob*1000)/10, maxConfidence)
		if rsi > 70 {
			result.Reason = "Potential Rise - Strong momentum but overbought conditions"
		} else {
			result.Reason = "Potential Rise - Technical indicators suggest upward movement"
		}
	case prob < bearishProb:
		result.Label = domain.PredictionBearish
		result.Confidence = math.Min(math.Round((1-prob)*1000)/10, maxConfidence)
		if rsi < 30 {
			result.Reason = "Potential Fall - Weak momentum with oversold conditions"
		} else {
			result.Reason = "Potential Fall - Technical indicators suggest downward movement"
		}
	default:
		result.Label = domain.PredictionNeutral
		result.Confidence = math.Min(math.Round((50+math.Abs(prob-0.5)*100)*10)/10, maxConfidence)
		result.Reason = "Sideways Movement - No clear directional signal"
	}

	// Damp confidence toward 50 when the latest feature vector looks
	// anomalous relative to the training window.
	anomaly := anomalyScore(scaled, latestScaled)
	damp := 1 - anomalyDampMax*anomaly
	result.Confidence = 50 + (result.Confidence-50)*damp
	result.Confidence = math.Round(result.Confidence*10) / 10
	if anomaly >= anomalyThreshold {
		result.Reason = fmt.Sprintf("%s (unusual market conditions, anomaly %.2f)", result.Reason, anomaly)
	}
	return result, true
}

func anomalyScore(scaled [][]float64, latest []float64) float64 {
	if len(scaled) < anomalySamples {
		return 0
	}
	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     anomalyThreshold,
		NumTrees:      anomalyTrees,
		SampleSize:    anomalySamples,
	})
	forest.Fit(scaled)
	scores := forest.Score([][]float64{latest})
	if len(scores) == 0 || math.IsNaN(scores[0]) || math.IsInf(scores[0], 0) {
		return 0
	}
	return math.Max(0, math.Min(1, scores[0]))
}

// ruleBased is the deterministic final tier: RSI extremes first, then the
// recent percent price change with +-10% and +-3% thresholds.
func ruleBased(t *features.Table) Result {
	n := t.Len()
	rsi := t.RSI[n-1]
	if rsi < 30 {
		return Result{Label: domain.PredictionBullish, Confidence: ruleConfidence, Reason: "Oversold - Potential Reversal Upward"}
	}
	if rsi > 70 {
		return Result{Label: domain.PredictionBearish, Confidence: ruleConfidence, Reason: "Overbought - Potential Reversal Downward"}
	}

	lookback := 7
	if n-1 < lookback {
		lookback = n - 1
	}
	if lookback < 1 || t.Close[n-1-lookback] == 0 {
		return Result{Label: domain.PredictionNeutral, Confidence: 50, Reason: "No Strong Technical Signals"}
	}
	change := (t.Close[n-1]/t.Close[n-1-lookback] - 1) * 100

	switch {
	case change > 10:
		return Result{Label: domain.PredictionBearish, Confidence: 60, Reason: fmt.Sprintf("Strong Recent Rise (%.1f%%) - Potential Pullback", change)}
	case change < -10:
		return Result{Label: domain.PredictionBullish, Confidence: 60, Reason: fmt.Sprintf("Strong Recent Drop (%.1f%%) - Potential Rebound", change)}
	case change > 3:
		return Result{Label: domain.PredictionBullish, Confidence: 55, Reason: fmt.Sprintf("Uptrend - %d-day change %.1f%%", lookback, change)}
	case change < -3:
		return Result{Label: domain.PredictionBearish, Confidence: 55, Reason: fmt.Sprintf("Downtrend - %d-day change %.1f%%", lookback, change)}
	default:
		return Result{Label: domain.PredictionNeutral, Confidence: 50, Reason: "No Strong Technical Signals"}
	}
}

func hasBadValue(row []float64) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}

func fitScaler(samples [][]float64) (means, stds []float64) {
	featureCount := len(samples[0])
	means = make([]float64, featureCount)
	stds = make([]float64, featureCount)
	for j := 0; j < featureCount; j++ {
		for i := range samples {
			means[j] += samples[i][j]
		}
		means[j] /= float64(len(samples))
		for i := range samples {
			d := samples[i][j] - means[j]
			stds[j] += d * d
		}
		stds[j] = math.Sqrt(stds[j] / float64(len(samples)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func scale(in, means, stds []float64) []float64 {
	out := make([]float64, len(in))
	for i := range in {
		out[i] = (in[i] - means[i]) / stds[i]
	}
	return out
}
