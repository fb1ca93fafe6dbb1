package scorer

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"pythia/internal/domain"
)

const (
	twitterWeight = 0.4
	redditWeight  = 0.3
	newsWeight    = 0.3
)

// SocialSnapshot aggregates per-platform sentiment readings for a symbol.
// Scores are each on -1..1.
type SocialSnapshot struct {
	Symbol        string  `json:"symbol"`
	TwitterScore  float64 `json:"twitter_score"`
	RedditScore   float64 `json:"reddit_score"`
	NewsScore     float64 `json:"news_score"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NeutralCount  int     `json:"neutral_count"`
}

// SocialSource yields social sentiment readings for a symbol.
type SocialSource interface {
	Snapshot(ctx context.Context, symbol string) (SocialSnapshot, error)
}

type SocialScorer struct {
	source SocialSource
}

func NewSocialScorer(source SocialSource) *SocialScorer {
	return &SocialScorer{source: source}
}

// Score blends twitter, reddit and news sentiment into a single -1..1 score.
// Strength is |score| on a 0-100 scale floored at 20; agreement across the
// three platforms is reported as a reason.
func (s *SocialScorer) Score(ctx context.Context, symbol string) (domain.SignalScore, error) {
	snap, err := s.source.Snapshot(ctx, symbol)
	if err != nil {
		return domain.SignalScore{}, fmt.Errorf("social source: %w", err)
	}

	weighted := snap.TwitterScore*twitterWeight + snap.RedditScore*redditWeight + snap.NewsScore*newsWeight

	label := domain.PredictionNeutral
	if weighted > 0.2 {
		label = domain.PredictionBullish
	} else if weighted < -0.2 {
		label = domain.PredictionBearish
	}

	scores := []float64{snap.TwitterScore, snap.RedditScore, snap.NewsScore}
	positive, negative := 0, 0
	for _, sc := range scores {
		if sc > 0.1 {
			positive++
		} else if sc < -0.1 {
			negative++
		}
	}
	agreement := domain.AgreementWeak
	if positive == len(scores) || negative == len(scores) {
		agreement = domain.AgreementStrong
	} else if positive >= 2 || negative >= 2 {
		agreement = domain.AgreementModerate
	}

	reasons := []string{
		fmt.Sprintf("Social sentiment %.2f (twitter %.2f, reddit %.2f, news %.2f)",
			weighted, snap.TwitterScore, snap.RedditScore, snap.NewsScore),
		fmt.Sprintf("%s cross-platform agreement", agreement),
	}

	return domain.SignalScore{
		Source:     domain.SourceSocial,
		Label:      label,
		Score:      weighted,
		Confidence: clamp(math.Trunc(math.Abs(weighted)*100), 20, 100),
		Reasons:    reasons,
	}, nil
}

// SimulatedSocial is a deterministic stand-in for twitter/reddit/news
// integrations. Seeded per symbol, platform and calendar day.
type SimulatedSocial struct {
	now func() time.Time
}

func NewSimulatedSocial(now func() time.Time) *SimulatedSocial {
	if now == nil {
		now = time.Now
	}
	return &SimulatedSocial{now: now}
}

func (s *SimulatedSocial) Snapshot(_ context.Context, symbol string) (SocialSnapshot, error) {
	day := s.now().UTC().Format("2006-01-02")

	popularity := 0.0
	switch symbol {
	case "BTC", "ETH":
		popularity = 0.2
	case "SOL", "BNB", "MATIC":
		popularity = 0.1
	}

	twitterRNG := rand.New(rand.NewSource(seedFrom(symbol + "_twitter_" + day)))
	twitter := clamp((twitterRNG.Float64()-0.5)+popularity, -1, 1)

	redditRNG := rand.New(rand.NewSource(seedFrom(symbol + "_reddit_" + day)))
	reddit := (redditRNG.Float64() - 0.5) * 1.6

	newsRNG := rand.New(rand.NewSource(seedFrom(symbol + "_news_" + day)))
	news := (newsRNG.Float64() - 0.5) * 1.4

	tweetFactor := 2
	switch symbol {
	case "BTC", "ETH":
		tweetFactor = 10
	case "SOL", "BNB", "MATIC", "ADA", "DOT":
		tweetFactor = 5
	}
	tweetCount := (50 + twitterRNG.Intn(150)) * tweetFactor

	positivePct := clampInt(50+int(twitter*40), 10, 80)
	negativePct := clampInt(50-int(twitter*30), 10, 80)
	// The two shares are derived independently and can exceed 100 combined
	// at strong sentiment; the negative share yields so neutral stays >= 0.
	if positivePct+negativePct > 100 {
		negativePct = 100 - positivePct
	}
	positive := tweetCount * positivePct / 100
	negative := tweetCount * negativePct / 100
	neutral := tweetCount - positive - negative

	return SocialSnapshot{
		Symbol:        symbol,
		TwitterScore:  twitter,
		RedditScore:   reddit,
		NewsScore:     news,
		PositiveCount: positive,
		NegativeCount: negative,
		NeutralCount:  neutral,
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
