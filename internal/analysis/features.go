package analysis

import (
	"github.com/stockview/stock-analysis-system/internal/models"
)

// Indicator parameters used by the feature pipeline.
const (
	bollingerPeriod = 20
	bollingerWidth  = 2.0
	stochKPeriod    = 14
	stochDPeriod    = 3
	volWindow       = 20
	rsiPeriod       = 14
)

// column binds a derived series to the feature-row field it fills. The
// series index k corresponds to full-series row k + Warmup[name].
type column struct {
	name   string
	series []float64
	set    func(r *models.FeatureRow, v float64)
}

// ComputeFeatures runs the full pipeline on a cleaned bar series: daily
// returns are outlier-clipped, indicator sequences are computed from the
// closes (and highs/lows where needed), and everything is re-aligned into
// one feature row per bar using the Warmup offset table. Output order and
// length match the input exactly.
func ComputeFeatures(bars []models.Bar) []models.FeatureRow {
	series := models.BarSeries{Bars: bars}
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()

	rets := ClipReturns(Returns(closes), ZClipThreshold)
	logrets := ClipReturns(LogReturns(closes), ZClipThreshold)

	macd, macdSignal := MACD(closes)
	bbUpper, bbMiddle, bbLower := Bollinger(closes, bollingerPeriod, bollingerWidth)
	stochK, stochD := Stochastic(highs, lows, closes, stochKPeriod, stochDPeriod)

	columns := []column{
		{colReturn, rets, func(r *models.FeatureRow, v float64) { r.Return = &v }},
		{colLogReturn, logrets, func(r *models.FeatureRow, v float64) { r.LogReturn = &v }},
		{models.IndicatorSMA5, SMA(closes, 5), func(r *models.FeatureRow, v float64) { r.SMA5 = &v }},
		{models.IndicatorSMA20, SMA(closes, 20), func(r *models.FeatureRow, v float64) { r.SMA20 = &v }},
		{models.IndicatorSMA50, SMA(closes, 50), func(r *models.FeatureRow, v float64) { r.SMA50 = &v }},
		{models.IndicatorEMA12, EMA(closes, 12), func(r *models.FeatureRow, v float64) { r.EMA12 = &v }},
		{models.IndicatorEMA26, EMA(closes, 26), func(r *models.FeatureRow, v float64) { r.EMA26 = &v }},
		{models.IndicatorRSI14, RSI(closes, rsiPeriod), func(r *models.FeatureRow, v float64) { r.RSI14 = &v }},
		{models.IndicatorMACD, macd, func(r *models.FeatureRow, v float64) { r.MACD = &v }},
		{models.IndicatorMACDSignal, macdSignal, func(r *models.FeatureRow, v float64) { r.MACDSignal = &v }},
		{models.IndicatorBBUpper, bbUpper, func(r *models.FeatureRow, v float64) { r.BBUpper = &v }},
		{models.IndicatorBBMiddle, bbMiddle, func(r *models.FeatureRow, v float64) { r.BBMiddle = &v }},
		{models.IndicatorBBLower, bbLower, func(r *models.FeatureRow, v float64) { r.BBLower = &v }},
		{models.IndicatorStochK, stochK, func(r *models.FeatureRow, v float64) { r.StochK = &v }},
		{models.IndicatorStochD, stochD, func(r *models.FeatureRow, v float64) { r.StochD = &v }},
		{models.IndicatorVol20, RollingVolatilityFromReturns(logrets, volWindow, len(bars)), func(r *models.FeatureRow, v float64) { r.Vol20 = &v }},
	}

	rows := make([]models.FeatureRow, len(bars))
	for i, b := range bars {
		rows[i] = models.FeatureRow{
			Date:   b.Date,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}

	for _, c := range columns {
		offset := Warmup[c.name]
		for k, v := range c.series {
			if offset+k >= len(rows) {
				break
			}
			c.set(&rows[offset+k], v)
		}
	}

	avgVolume := averageVolume(bars)
	if avgVolume > 0 {
		for i, b := range bars {
			ratio := float64(b.Volume) / avgVolume
			rows[i].VolumeRatio = &ratio
		}
	}

	return rows
}

func averageVolume(bars []models.Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	var total int64
	for _, b := range bars {
		total += b.Volume
	}
	return float64(total) / float64(len(bars))
}
