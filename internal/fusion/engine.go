// Package fusion combines technical, on-chain and social signals into one
// weighted composite prediction per timeframe.
package fusion

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"pythia/internal/domain"
	"pythia/internal/scorer"
)

const (
	bullishThreshold = 2.0
	bearishThreshold = -2.0
	// Per-source direction threshold on the normalized -10..10 scale,
	// used for the agreement bonus.
	directionThreshold = 3.0
)

type weights struct {
	technical float64
	onchain   float64
	social    float64
}

func weightsFor(tf domain.Timeframe) weights {
	switch tf {
	case domain.TimeframeShort:
		return weights{technical: 0.5, onchain: 0.2, social: 0.3}
	case domain.TimeframeLong:
		return weights{technical: 0.3, onchain: 0.5, social: 0.2}
	default:
		return weights{technical: 0.4, onchain: 0.3, social: 0.3}
	}
}

// Engine fuses the three signal sources. A failed on-chain or social source
// degrades to a neutral signal with a note instead of failing the analysis.
type Engine struct {
	onchain *scorer.OnChainScorer
	social  *scorer.SocialScorer
	now     func() time.Time
}

func NewEngine(onchain *scorer.OnChainScorer, social *scorer.SocialScorer, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{onchain: onchain, social: social, now: now}
}

// Fuse combines an already-computed technical score with fresh on-chain and
// social scores for the symbol.
func (e *Engine) Fuse(ctx context.Context, symbol string, tf domain.Timeframe, technical domain.SignalScore) domain.CompositeResult {
	onchain, err := e.onchain.Score(ctx, symbol, tf)
	if err != nil {
		log.Printf("Warning: on-chain source unavailable for %s: %v", symbol, err)
		onchain = unavailableScore(domain.SourceOnChain)
	}
	social, err := e.social.Score(ctx, symbol)
	if err != nil {
		log.Printf("Warning: social source unavailable for %s: %v", symbol, err)
		social = unavailableScore(domain.SourceSocial)
	}
	return e.Combine(symbol, tf, technical, onchain, social)
}

// Combine normalizes all three sources onto a -10..10 scale (technical
// multiplied by 5, on-chain divided by 10, social multiplied by 10) and
// applies timeframe-dependent weights.
func (e *Engine) Combine(symbol string, tf domain.Timeframe, technical, onchain, social domain.SignalScore) domain.CompositeResult {
	techNorm := clamp(technical.Score*5, -10, 10)
	onchainNorm := onchain.Score / 10
	socialNorm := social.Score * 10

	w := weightsFor(tf)
	combined := techNorm*w.technical + onchainNorm*w.onchain + socialNorm*w.social

	prediction := domain.PredictionNeutral
	if combined > bullishThreshold {
		prediction = domain.PredictionBullish
	} else if combined < bearishThreshold {
		prediction = domain.PredictionBearish
	}

	bullish, bearish := 0, 0
	for _, norm := range []float64{techNorm, onchainNorm, socialNorm} {
		if norm > directionThreshold {
			bullish++
		} else if norm < -directionThreshold {
			bearish++
		}
	}

	agreement := domain.AgreementWeak
	bonus := 0.0
	if bullish == 3 || bearish == 3 {
		agreement = domain.AgreementStrong
		bonus = 20
	} else if bullish >= 2 || bearish >= 2 {
		agreement = domain.AgreementModerate
		bonus = 10
	}

	confidence := math.Min(50+math.Abs(combined)*5+bonus, 100)

	return domain.CompositeResult{
		Symbol:      symbol,
		Timeframe:   tf,
		Prediction:  prediction,
		Score:       combined,
		Confidence:  confidence,
		Agreement:   agreement,
		Technical:   technical,
		OnChain:     onchain,
		Social:      social,
		Explanation: explain(tf, prediction, confidence, agreement, techNorm, onchainNorm, socialNorm, technical),
		AnalyzedAt:  e.now().UTC(),
	}
}

func explain(tf domain.Timeframe, prediction domain.Prediction, confidence float64, agreement domain.Agreement, techNorm, onchainNorm, socialNorm float64, technical domain.SignalScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s forecast: %s with %.0f%% confidence. ", strings.ToUpper(string(tf)), prediction, confidence)

	switch prediction {
	case domain.PredictionBullish:
		parts := make([]string, 0, 3)
		if techNorm > 0 {
			parts = append(parts, fmt.Sprintf("technical indicators (%s)", scorer.Explain(technical)))
		}
		if onchainNorm > 0 {
			parts = append(parts, "on-chain data (exchange outflows suggest accumulation)")
		}
		if socialNorm > 0 {
			parts = append(parts, fmt.Sprintf("social sentiment (%s agreement across platforms)", agreement))
		}
		b.WriteString("Positive signals from " + strings.Join(parts, ", "))
	case domain.PredictionBearish:
		parts := make([]string, 0, 3)
		if techNorm < 0 {
			parts = append(parts, fmt.Sprintf("technical indicators (%s)", scorer.Explain(technical)))
		}
		if onchainNorm < 0 {
			parts = append(parts, "on-chain data (increasing exchange inflows suggest distribution)")
		}
		if socialNorm < 0 {
			parts = append(parts, fmt.Sprintf("social sentiment (%s agreement across platforms)", agreement))
		}
		b.WriteString("Negative signals from " + strings.Join(parts, ", "))
	default:
		b.WriteString("Mixed signals: ")
		if math.Abs(techNorm) < directionThreshold {
			b.WriteString("technical indicators are neutral. ")
		}
		if math.Abs(onchainNorm) < directionThreshold {
			b.WriteString("on-chain metrics show no clear trend. ")
		}
		if math.Abs(socialNorm) < directionThreshold {
			b.WriteString("social sentiment is balanced. ")
		}
	}
	return strings.TrimSpace(b.String())
}

func unavailableScore(source string) domain.SignalScore {
	return domain.SignalScore{
		Source:     source,
		Label:      domain.PredictionNeutral,
		Score:      0,
		Confidence: 50,
		Reasons:    []string{"source unavailable, treated as neutral"},
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
