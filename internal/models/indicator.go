package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Common indicator type constants
const (
	IndicatorSMA5       = "SMA_5"
	IndicatorSMA20      = "SMA_20"
	IndicatorSMA50      = "SMA_50"
	IndicatorEMA12      = "EMA_12"
	IndicatorEMA26      = "EMA_26"
	IndicatorRSI14      = "RSI_14"
	IndicatorMACD       = "MACD"
	IndicatorMACDSignal = "MACD_SIGNAL"
	IndicatorBBUpper    = "BB_UPPER"
	IndicatorBBMiddle   = "BB_MIDDLE"
	IndicatorBBLower    = "BB_LOWER"
	IndicatorStochK     = "STOCH_K"
	IndicatorStochD     = "STOCH_D"
	IndicatorVol20      = "VOL_20"
)

// IndicatorSnapshot represents the latest computed value of one indicator
// for a symbol, persisted after each analysis run.
type IndicatorSnapshot struct {
	ID            int             `json:"id"`
	Symbol        string          `json:"symbol"`
	Date          time.Time       `json:"date"`
	IndicatorType string          `json:"indicator_type"`
	Value         decimal.Decimal `json:"value"`
	Timeframe     string          `json:"timeframe"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SnapshotFromFloat builds a daily snapshot from a pipeline float value.
func SnapshotFromFloat(symbol string, date time.Time, indicatorType string, value float64) *IndicatorSnapshot {
	return &IndicatorSnapshot{
		Symbol:        symbol,
		Date:          date,
		IndicatorType: indicatorType,
		Value:         decimal.NewFromFloat(value),
		Timeframe:     "daily",
	}
}
