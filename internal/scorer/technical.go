// Package scorer turns raw signal inputs into normalized SignalScores.
// The technical scorer reads an augmented feature table; the on-chain and
// social scorers consume pluggable data sources.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"pythia/internal/domain"
	"pythia/internal/features"
)

const (
	technicalBullishThreshold = 0.2
	technicalBearishThreshold = -0.2
	maxTechnicalConfidence    = 95

	// Bars required before the ensemble votes; below this most indicator
	// columns carry only substituted defaults.
	minTechnicalBars = 30
)

// contribution is one indicator's vote: a directional strength and a
// confidence with a reason attached.
type contribution struct {
	signal     float64
	confidence float64
	reason     string
}

// ScoreTechnical blends the indicator ensemble at the last row of the table
// into a single technical SignalScore. Tables shorter than the indicator
// warmup yield a neutral score rather than votes on substituted defaults.
func ScoreTechnical(t *features.Table) domain.SignalScore {
	if t == nil || t.Len() < minTechnicalBars {
		return neutralScore(domain.SourceTechnical, "Insufficient price data for technical analysis")
	}

	last := t.Len() - 1
	votes := make([]contribution, 0, 8)
	extraReasons := make([]string, 0, 2)

	votes = append(votes, rsiVote(t.RSI[last]))
	votes = append(votes, macdVote(t.MACD[last], t.MACDSignal[last], t.MACDHist[last]))
	votes = append(votes, emaVote(t.EMA12[last], t.EMA26[last]))
	if v, ok := bollingerVote(t.Close[last], t.BBHigh[last], t.BBLow[last]); ok {
		votes = append(votes, v)
	}
	if v, ok := stochasticVote(t.StochK[last], t.StochD[last]); ok {
		votes = append(votes, v)
	}

	// A strong trend amplifies every vote collected so far instead of
	// adding one of its own.
	if adx := t.ADX[last]; adx > 25 {
		factor := 1 + (adx-25)/100
		for i := range votes {
			votes[i].confidence = math.Min(votes[i].confidence*factor, maxTechnicalConfidence)
		}
		extraReasons = append(extraReasons, fmt.Sprintf("Strong trend (ADX: %.1f)", adx))
	}

	if v, ok := volumeVote(t.VolumeSpike[last], votes); ok {
		votes = append(votes, v)
	}
	if v, ok := divergenceVote(t.Divergence[last]); ok {
		votes = append(votes, v)
	}

	var signalSum, confSum float64
	reasons := make([]string, 0, len(votes)+len(extraReasons))
	for _, v := range votes {
		signalSum += v.signal
		confSum += v.confidence
		reasons = append(reasons, v.reason)
	}
	reasons = append(reasons, extraReasons...)

	overall := signalSum / float64(len(votes))
	label := domain.PredictionNeutral
	if overall > technicalBullishThreshold {
		label = domain.PredictionBullish
	} else if overall < technicalBearishThreshold {
		label = domain.PredictionBearish
	}

	base := confSum / float64(len(votes))
	multiplier := math.Min(math.Abs(overall)*1.5, 1.5)
	confidence := math.Min(base*multiplier, maxTechnicalConfidence)

	return domain.SignalScore{
		Source:     domain.SourceTechnical,
		Label:      label,
		Score:      overall,
		Confidence: math.Round(confidence),
		Reasons:    reasons,
	}
}

// Explain joins the three longest reasons of a score, longest first.
func Explain(s domain.SignalScore) string {
	reasons := make([]string, len(s.Reasons))
	copy(reasons, s.Reasons)
	sort.SliceStable(reasons, func(i, j int) bool {
		return len(reasons[i]) > len(reasons[j])
	})
	if len(reasons) > 3 {
		reasons = reasons[:3]
	}
	return strings.Join(reasons, " | ")
}

func rsiVote(rsi float64) contribution {
	switch {
	case rsi < 30:
		return contribution{
			signal:     1,
			confidence: 70 + (30-rsi)*1.5,
			reason:     fmt.Sprintf("RSI oversold (%.1f)", rsi),
		}
	case rsi > 70:
		return contribution{
			signal:     -1,
			confidence: 70 + (rsi-70)*1.5,
			reason:     fmt.Sprintf("RSI overbought (%.1f)", rsi),
		}
	default:
		bias := 1.0
		reason := fmt.Sprintf("RSI transitioning lower (%.1f)", rsi)
		if rsi >= 50 {
			bias = -1.0
			reason = fmt.Sprintf("RSI transitioning higher (%.1f)", rsi)
		}
		strength := math.Abs(rsi-50) / 20
		return contribution{
			signal:     bias * strength,
			confidence: 50 + strength*10,
			reason:     reason,
		}
	}
}

func macdVote(macd, signal, hist float64) contribution {
	strength := math.Min(math.Abs(hist)*20, 25)
	if macd > signal {
		return contribution{signal: 1, confidence: 50 + strength, reason: "MACD above signal line"}
	}
	return contribution{signal: -1, confidence: 50 + strength, reason: "MACD below signal line"}
}

func emaVote(ema12, ema26 float64) contribution {
	if ema26 == 0 {
		return contribution{confidence: 50, reason: "EMA unavailable"}
	}
	if ema12 > ema26 {
		diffPct := (ema12 - ema26) / ema26 * 100
		return contribution{
			signal:     1,
			confidence: 50 + math.Min(diffPct*5, 30),
			reason:     "Short-term EMA above long-term EMA",
		}
	}
	diffPct := (ema26 - ema12) / ema26 * 100
	return contribution{
		signal:     -1,
		confidence: 50 + math.Min(diffPct*5, 30),
		reason:     "Short-term EMA below long-term EMA",
	}
}

func bollingerVote(close, bbHigh, bbLow float64) (contribution, bool) {
	span := bbHigh - bbLow
	if span <= 0 {
		return contribution{}, false
	}
	pos := (close - bbLow) / span
	if pos < 0.2 {
		return contribution{
			signal:     1,
			confidence: 60 + (0.2-pos)*100,
			reason:     "Price near lower Bollinger Band",
		}, true
	}
	if pos > 0.8 {
		return contribution{
			signal:     -1,
			confidence: 60 + (pos-0.8)*100,
			reason:     "Price near upper Bollinger Band",
		}, true
	}
	return contribution{}, false
}

func stochasticVote(k, d float64) (contribution, bool) {
	switch {
	case k < 20 && d < 20:
		return contribution{
			signal:     1,
			confidence: 60 + (20-k)*1.5,
			reason:     fmt.Sprintf("Stochastic oversold (%.1f)", k),
		}, true
	case k > 80 && d > 80:
		return contribution{
			signal:     -1,
			confidence: 60 + (k-80)*1.5,
			reason:     fmt.Sprintf("Stochastic overbought (%.1f)", k),
		}, true
	case k > d && k < 80:
		return contribution{signal: 0.5, confidence: 55, reason: "Stochastic K crossing above D"}, true
	case k < d && k > 20:
		return contribution{signal: -0.5, confidence: 55, reason: "Stochastic K crossing below D"}, true
	}
	return contribution{}, false
}

// volumeVote confirms the prevailing direction on a volume spike. It only
// fires when the average of the two most recent votes already leans one way.
func volumeVote(spike float64, votes []contribution) (contribution, bool) {
	if spike <= 2 || len(votes) == 0 {
		return contribution{}, false
	}
	recent := votes
	if len(recent) > 2 {
		recent = recent[len(recent)-2:]
	}
	var avg float64
	for _, v := range recent {
		avg += v.signal
	}
	avg /= float64(len(recent))

	conf := 60 + math.Min(spike*5, 25)
	if avg > 0 {
		return contribution{
			signal:     1,
			confidence: conf,
			reason:     fmt.Sprintf("High volume confirming uptrend (%.1fx)", spike),
		}, true
	}
	if avg < 0 {
		return contribution{
			signal:     -1,
			confidence: conf,
			reason:     fmt.Sprintf("High volume confirming downtrend (%.1fx)", spike),
		}, true
	}
	return contribution{}, false
}

func divergenceVote(divergence float64) (contribution, bool) {
	switch divergence {
	case 1:
		return contribution{signal: 1.5, confidence: 80, reason: "Bullish RSI divergence"}, true
	case -1:
		return contribution{signal: -1.5, confidence: 80, reason: "Bearish RSI divergence"}, true
	}
	return contribution{}, false
}

func neutralScore(source, reason string) domain.SignalScore {
	return domain.SignalScore{
		Source:     source,
		Label:      domain.PredictionNeutral,
		Score:      0,
		Confidence: 50,
		Reasons:    []string{reason},
	}
}
