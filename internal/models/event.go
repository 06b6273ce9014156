package models

import "time"

// Event type constants
const (
	EventBarUpsert         = "BAR_UPSERT"
	EventAnalysisCompleted = "ANALYSIS_COMPLETED"
	EventForecastCompleted = "FORECAST_COMPLETED"
)

// BarEvent is an inbound Kafka event carrying one OHLCV bar to ingest
// into the price_bars store. Prices arrive as strings so producers can
// send exact decimal values.
type BarEvent struct {
	EventType string  `json:"event_type"`
	Source    string  `json:"source"`
	Symbol    string  `json:"symbol"`
	Date      string  `json:"date"`
	Open      string  `json:"open"`
	High      string  `json:"high"`
	Low       string  `json:"low"`
	Close     string  `json:"close"`
	Volume    int64   `json:"volume"`
	Timestamp float64 `json:"timestamp,omitempty"`
}

// AnalysisEvent is published after a successful analysis run.
type AnalysisEvent struct {
	EventType      string    `json:"event_type"`
	Symbol         string    `json:"symbol"`
	Period         string    `json:"period"`
	Interval       string    `json:"interval"`
	Trend          string    `json:"trend"`
	Recommendation string    `json:"recommendation"`
	Score          float64   `json:"score"`
	LastClose      float64   `json:"last_close"`
	Timestamp      time.Time `json:"timestamp"`
}

// ForecastEvent is published after a successful forecast run.
type ForecastEvent struct {
	EventType      string    `json:"event_type"`
	Symbol         string    `json:"symbol"`
	TargetDate     string    `json:"target_date"`
	PredictedPrice float64   `json:"predicted_price"`
	PriceChangePct float64   `json:"price_change_pct"`
	RiskLevel      string    `json:"risk_level"`
	Timestamp      time.Time `json:"timestamp"`
}
