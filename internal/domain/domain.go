package domain

import (
	"errors"
	"time"
)

type Prediction string

const (
	PredictionBullish Prediction = "Bullish"
	PredictionBearish Prediction = "Bearish"
	PredictionNeutral Prediction = "Neutral"
)

type Agreement string

const (
	AgreementStrong   Agreement = "Strong"
	AgreementModerate Agreement = "Moderate"
	AgreementWeak     Agreement = "Weak"
)

type Timeframe string

const (
	TimeframeShort  Timeframe = "1h"
	TimeframeMedium Timeframe = "1d"
	TimeframeLong   Timeframe = "1w"
)

var SupportedTimeframes = []Timeframe{TimeframeShort, TimeframeMedium, TimeframeLong}

func (t Timeframe) IsValid() bool {
	for _, tf := range SupportedTimeframes {
		if t == tf {
			return true
		}
	}
	return false
}

const (
	SourceTechnical = "technical"
	SourceOnChain   = "onchain"
	SourceSocial    = "social"
)

// Bar is a single OHLCV candle. Volume may be zero, meaning no volume data.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// PriceSeries is an immutable, timestamp-ordered bar sequence for one symbol.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

var ErrUnorderedSeries = errors.New("price series timestamps must be strictly increasing")

func (s PriceSeries) Len() int { return len(s.Bars) }

func (s PriceSeries) Validate() error {
	for i := 1; i < len(s.Bars); i++ {
		if !s.Bars[i].Timestamp.After(s.Bars[i-1].Timestamp) {
			return ErrUnorderedSeries
		}
	}
	return nil
}

func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Close
	}
	return out
}

func (s PriceSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].High
	}
	return out
}

func (s PriceSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Low
	}
	return out
}

func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i := range s.Bars {
		out[i] = s.Bars[i].Volume
	}
	return out
}

// SignalScore is one scorer's directional verdict. Score ranges are
// source-specific: technical roughly -2..2, onchain -100..100, social -1..1.
type SignalScore struct {
	Source     string     `json:"source"`
	Label      Prediction `json:"label"`
	Score      float64    `json:"score"`
	Confidence float64    `json:"confidence"`
	Reasons    []string   `json:"reasons"`
}

// CompositeResult is the fused multi-source prediction for one symbol.
type CompositeResult struct {
	Symbol      string      `json:"symbol"`
	Timeframe   Timeframe   `json:"timeframe"`
	Prediction  Prediction  `json:"prediction"`
	Score       float64     `json:"score"`
	Confidence  float64     `json:"confidence"`
	Agreement   Agreement   `json:"agreement"`
	Technical   SignalScore `json:"technical"`
	OnChain     SignalScore `json:"onchain"`
	Social      SignalScore `json:"social"`
	Explanation string      `json:"explanation"`
	AnalyzedAt  time.Time   `json:"analyzed_at"`
}

type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeFailure Outcome = "Failure"
	OutcomeNeutral Outcome = "Neutral"
)

// Trade is one walk-forward backtest step: a prediction and its realized result.
type Trade struct {
	Date         time.Time  `json:"date"`
	Prediction   Prediction `json:"prediction"`
	Confidence   float64    `json:"confidence"`
	Price        float64    `json:"price"`
	FuturePrice  float64    `json:"future_price"`
	ActualReturn float64    `json:"actual_return"`
	Outcome      Outcome    `json:"outcome"`
	Reason       string     `json:"reason"`
}

type BacktestReport struct {
	Symbol              string    `json:"symbol"`
	Period              string    `json:"period"`
	IntervalDays        int       `json:"prediction_interval"`
	NumTrades           int       `json:"num_trades"`
	SuccessfulTrades    int       `json:"successful_trades"`
	FailedTrades        int       `json:"failed_trades"`
	NeutralTrades       int       `json:"neutral_trades"`
	SuccessRate         float64   `json:"success_rate"`
	InitialCapital      float64   `json:"initial_capital"`
	FinalPortfolioValue float64   `json:"final_portfolio_value"`
	PortfolioReturn     float64   `json:"portfolio_return"`
	HoldReturn          float64   `json:"hodl_return"`
	Alpha               float64   `json:"alpha"`
	Trades              []Trade   `json:"trades"`
	GeneratedAt         time.Time `json:"timestamp"`
}

type WatchlistEntry struct {
	ID      int64     `json:"id"`
	Symbol  string    `json:"symbol"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// PredictionRecord is one persisted fused prediction, kept as history.
type PredictionRecord struct {
	ID         int64      `json:"id"`
	Symbol     string     `json:"symbol"`
	Timeframe  Timeframe  `json:"timeframe"`
	Prediction Prediction `json:"prediction"`
	Score      float64    `json:"score"`
	Confidence float64    `json:"confidence"`
	Agreement  Agreement  `json:"agreement"`
	CreatedAt  time.Time  `json:"created_at"`
}

var SupportedSymbols = []string{"BTC", "ETH", "SOL", "BNB", "XRP", "ADA", "DOGE", "MATIC", "DOT", "AVAX", "LINK", "ALGO"}

// CoinGeckoID maps ticker symbols to CoinGecko coin ids.
var CoinGeckoID = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"MATIC": "matic-network",
	"DOT":   "polkadot",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"ALGO":  "algorand",
}

// SupportedPeriods maps backtest period names to calendar days of history.
var SupportedPeriods = map[string]int{
	"1mo": 30,
	"3mo": 90,
	"6mo": 180,
	"1y":  365,
	"2y":  730,
	"5y":  1825,
}
