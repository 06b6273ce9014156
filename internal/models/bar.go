package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents one OHLCV observation for a symbol at a fixed interval.
// Close is always finite and positive once a series has passed cleaning.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// BarSeries is a non-empty, date-ascending sequence of bars for one
// symbol/period/interval triple.
type BarSeries struct {
	Symbol   string `json:"symbol"`
	Period   string `json:"period"`
	Interval string `json:"interval"`
	Bars     []Bar  `json:"bars"`
}

// Closes extracts the close prices in series order.
func (s *BarSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// Highs extracts the high prices in series order.
func (s *BarSeries) Highs() []float64 {
	highs := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		highs[i] = b.High
	}
	return highs
}

// Lows extracts the low prices in series order.
func (s *BarSeries) Lows() []float64 {
	lows := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		lows[i] = b.Low
	}
	return lows
}

// Volumes extracts the volumes in series order.
func (s *BarSeries) Volumes() []int64 {
	volumes := make([]int64, len(s.Bars))
	for i, b := range s.Bars {
		volumes[i] = b.Volume
	}
	return volumes
}

// CleaningSummary reports how many raw bars survived cleaning.
type CleaningSummary struct {
	OriginalCount int     `json:"original_count"`
	CleanedCount  int     `json:"cleaned_count"`
	RemovedCount  int     `json:"removed_count"`
	CleaningRatio float64 `json:"cleaning_ratio"`
}

// PriceBar represents a persisted OHLCV record in the price_bars table.
// Storage keeps prices as decimals; the pipeline works on float64 bars.
type PriceBar struct {
	ID        int             `json:"id"`
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToBar converts a stored price bar to a pipeline bar.
func (p *PriceBar) ToBar() Bar {
	return Bar{
		Date:   p.Date,
		Open:   p.Open.InexactFloat64(),
		High:   p.High.InexactFloat64(),
		Low:    p.Low.InexactFloat64(),
		Close:  p.Close.InexactFloat64(),
		Volume: p.Volume,
	}
}

// PriceBarFromBar converts a pipeline bar to its storage representation.
func PriceBarFromBar(symbol string, b Bar) *PriceBar {
	return &PriceBar{
		Symbol: symbol,
		Date:   b.Date,
		Open:   decimal.NewFromFloat(b.Open),
		High:   decimal.NewFromFloat(b.High),
		Low:    decimal.NewFromFloat(b.Low),
		Close:  decimal.NewFromFloat(b.Close),
		Volume: b.Volume,
	}
}
