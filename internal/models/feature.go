package models

import "time"

// FeatureRow is one bar extended with derived return and indicator values.
// A nil pointer means the indicator is inside its warm-up window for that
// row and has no defined value; it is never encoded as zero.
type FeatureRow struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`

	Return      *float64 `json:"ret,omitempty"`
	LogReturn   *float64 `json:"logret,omitempty"`
	SMA5        *float64 `json:"sma5,omitempty"`
	SMA20       *float64 `json:"sma20,omitempty"`
	SMA50       *float64 `json:"sma50,omitempty"`
	EMA12       *float64 `json:"ema12,omitempty"`
	EMA26       *float64 `json:"ema26,omitempty"`
	RSI14       *float64 `json:"rsi14,omitempty"`
	MACD        *float64 `json:"macd,omitempty"`
	MACDSignal  *float64 `json:"macd_signal,omitempty"`
	BBUpper     *float64 `json:"bb_upper,omitempty"`
	BBMiddle    *float64 `json:"bb_middle,omitempty"`
	BBLower     *float64 `json:"bb_lower,omitempty"`
	StochK      *float64 `json:"stoch_k,omitempty"`
	StochD      *float64 `json:"stoch_d,omitempty"`
	Vol20       *float64 `json:"vol20,omitempty"`
	VolumeRatio *float64 `json:"volume_ratio,omitempty"`
}

// AnalysisPayload is the cacheable result of a full analysis run.
type AnalysisPayload struct {
	Symbol     string          `json:"symbol"`
	Period     string          `json:"period"`
	Interval   string          `json:"interval"`
	Series     []FeatureRow    `json:"series"`
	Summary    *Summary        `json:"summary"`
	Cleaning   CleaningSummary `json:"cleaning"`
	ComputedAt time.Time       `json:"computed_at"`
}
