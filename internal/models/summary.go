package models

// Trend classification constants
const (
	TrendBullish          = "BULLISH"
	TrendBearish          = "BEARISH"
	TrendSideways         = "SIDEWAYS"
	TrendInsufficientData = "INSUFFICIENT_DATA"
)

// Recommendation constants
const (
	RecommendStrongBuy  = "STRONG_BUY"
	RecommendBuy        = "BUY"
	RecommendHold       = "HOLD"
	RecommendSell       = "SELL"
	RecommendStrongSell = "STRONG_SELL"
)

// Summary reduces a feature-row sequence to scalar statistics and a
// discrete trade recommendation. The recommendation is a scored heuristic
// signal, not a statistically validated model.
type Summary struct {
	FirstClose     float64  `json:"first_close"`
	LastClose      float64  `json:"last_close"`
	Change         float64  `json:"change"`
	ChangePercent  float64  `json:"change_percent"`
	AvgDailyReturn float64  `json:"avg_daily_return"`
	Volatility     *float64 `json:"volatility,omitempty"`
	MaxDrawdownPct float64  `json:"max_drawdown_pct"`
	Trend          string   `json:"trend"`
	SharpeRatio    *float64 `json:"sharpe_ratio,omitempty"`
	AvgVolume      float64  `json:"avg_volume"`
	LatestRSI      *float64 `json:"latest_rsi,omitempty"`
	LatestMACD     *float64 `json:"latest_macd,omitempty"`
	LatestStochK   *float64 `json:"latest_stoch_k,omitempty"`
	High52         float64  `json:"high_52"`
	Low52          float64  `json:"low_52"`
	PctFromHigh52  float64  `json:"pct_from_high_52"`
	PctFromLow52   float64  `json:"pct_from_low_52"`
	Recommendation string   `json:"recommendation"`
	RecommendScore float64  `json:"recommend_score"`
}
