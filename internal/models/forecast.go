package models

import "time"

// Risk level constants derived from annualized volatility
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Trend direction and sentiment constants
const (
	DirectionUpward   = "Upward"
	DirectionDownward = "Downward"

	SentimentBullish = "Bullish"
	SentimentBearish = "Bearish"
)

// ForecastPoint is one projected trading day between the last historical
// date and the target date.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Predicted  float64   `json:"predicted"`
	Lower      float64   `json:"lower"`
	Upper      float64   `json:"upper"`
	Confidence float64   `json:"confidence"`
}

// Forecast is a linear-trend projection with confidence bounds and model
// diagnostics. The confidence score is a heuristic decay, not a true
// statistical confidence level.
type Forecast struct {
	Symbol          string          `json:"symbol"`
	TargetDate      time.Time       `json:"target_date"`
	CurrentPrice    float64         `json:"current_price"`
	PredictedPrice  float64         `json:"predicted_price"`
	PriceChange     float64         `json:"price_change"`
	PriceChangePct  float64         `json:"price_change_pct"`
	VolatilityPct   float64         `json:"volatility_pct"`
	RiskLevel       string          `json:"risk_level"`
	TrendDirection  string          `json:"trend_direction"`
	MarketSentiment string          `json:"market_sentiment"`
	Points          []ForecastPoint `json:"points"`
	Slope           float64         `json:"slope"`
	Intercept       float64         `json:"intercept"`
	RSquared        float64         `json:"r_squared"`
	Volatility      float64         `json:"volatility"`
	WindowLength    int             `json:"window_length"`
	ComputedAt      time.Time       `json:"computed_at"`
}

// BatchForecastSummary aggregates a multi-symbol forecast run.
type BatchForecastSummary struct {
	TotalSymbols      int     `json:"total_symbols"`
	AverageGain       float64 `json:"average_gain"`
	HighestGain       float64 `json:"highest_gain"`
	LowestGain        float64 `json:"lowest_gain"`
	BullishCount      int     `json:"bullish_count"`
	BearishCount      int     `json:"bearish_count"`
	AverageVolatility float64 `json:"average_volatility"`
	HighRiskCount     int     `json:"high_risk_count"`
	MediumRiskCount   int     `json:"medium_risk_count"`
	LowRiskCount      int     `json:"low_risk_count"`
}
