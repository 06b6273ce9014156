package analysis

import "github.com/stockview/stock-analysis-system/internal/models"

// ScoringConfig holds the weights and thresholds of the recommendation
// heuristic. The values have no statistical derivation; they are kept as
// configuration so they can be tuned and tested independently.
type ScoringConfig struct {
	RSIOversold         float64 // RSI below this scores RSIOversoldWeight
	RSIOverbought       float64 // RSI above this scores RSIOverboughtWeight
	RSINeutralLow       float64 // inclusive lower bound of the neutral band
	RSINeutralHigh      float64 // inclusive upper bound of the neutral band
	RSIOversoldWeight   float64
	RSIOverboughtWeight float64
	RSINeutralWeight    float64

	TrendWeight float64 // added for BULLISH, subtracted for BEARISH

	ChangeThresholdPct float64 // window change beyond ±this moves the score
	ChangeWeight       float64

	StochOversold   float64
	StochOverbought float64
	StochWeight     float64

	StrongBuyScore  float64
	BuyScore        float64
	SellScore       float64
	StrongSellScore float64
}

// DefaultScoring returns the standard recommendation scoring parameters.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		RSIOversold:         30,
		RSIOverbought:       70,
		RSINeutralLow:       40,
		RSINeutralHigh:      60,
		RSIOversoldWeight:   2,
		RSIOverboughtWeight: 2,
		RSINeutralWeight:    0.5,

		TrendWeight: 1.5,

		ChangeThresholdPct: 10,
		ChangeWeight:       1,

		StochOversold:   20,
		StochOverbought: 80,
		StochWeight:     1,

		StrongBuyScore:  3,
		BuyScore:        1.5,
		SellScore:       -1.5,
		StrongSellScore: -3,
	}
}

// Score computes the additive recommendation score. Absent inputs (nil
// RSI or %K) contribute nothing.
func (c ScoringConfig) Score(rsi, stochK *float64, trend string, changePct float64) float64 {
	score := 0.0

	if rsi != nil {
		switch {
		case *rsi < c.RSIOversold:
			score += c.RSIOversoldWeight
		case *rsi > c.RSIOverbought:
			score -= c.RSIOverboughtWeight
		case *rsi >= c.RSINeutralLow && *rsi <= c.RSINeutralHigh:
			score += c.RSINeutralWeight
		}
	}

	switch trend {
	case models.TrendBullish:
		score += c.TrendWeight
	case models.TrendBearish:
		score -= c.TrendWeight
	}

	if changePct > c.ChangeThresholdPct {
		score += c.ChangeWeight
	} else if changePct < -c.ChangeThresholdPct {
		score -= c.ChangeWeight
	}

	if stochK != nil {
		if *stochK < c.StochOversold {
			score += c.StochWeight
		} else if *stochK > c.StochOverbought {
			score -= c.StochWeight
		}
	}

	return score
}

// Recommend maps a score to the discrete recommendation.
func (c ScoringConfig) Recommend(score float64) string {
	switch {
	case score >= c.StrongBuyScore:
		return models.RecommendStrongBuy
	case score >= c.BuyScore:
		return models.RecommendBuy
	case score <= c.StrongSellScore:
		return models.RecommendStrongSell
	case score <= c.SellScore:
		return models.RecommendSell
	default:
		return models.RecommendHold
	}
}
