package analysis

import (
	"math"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// TradingDaysPerYear is the annualization factor for daily statistics.
const TradingDaysPerYear = 252

// Derived column names that are not indicator types.
const (
	colReturn    = "RET"
	colLogReturn = "LOGRET"
)

// Warmup maps each derived column to the first row index at which it is
// defined. Every period-n indicator follows the same convention: defined
// from row n-1 onward. The assembler drives all re-alignment from this
// table; nothing recomputes offsets per row.
var Warmup = map[string]int{
	colReturn:                  1,
	colLogReturn:               1,
	models.IndicatorSMA5:       4,
	models.IndicatorSMA20:      19,
	models.IndicatorSMA50:      49,
	models.IndicatorEMA12:      11,
	models.IndicatorEMA26:      25,
	models.IndicatorRSI14:      13,
	models.IndicatorMACD:       25,
	models.IndicatorMACDSignal: 33,
	models.IndicatorBBUpper:    19,
	models.IndicatorBBMiddle:   19,
	models.IndicatorBBLower:    19,
	models.IndicatorStochK:     13,
	models.IndicatorStochD:     15,
	models.IndicatorVol20:      19,
}

// Returns computes daily simple returns. The result has length N-1 and is
// aligned to rows 1..N-1 of the close series.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = closes[i]/closes[i-1] - 1
	}
	return out
}

// LogReturns computes daily log returns, aligned like Returns. Closes must
// be positive; cleaning guarantees that upstream.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out[i-1] = math.Log(closes[i] / closes[i-1])
	}
	return out
}

// SMA computes the simple moving average. The result is aligned to rows
// period-1..N-1; nil if there is not enough data.
func SMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, len(values)-period+1)
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i-period+1] = sum / float64(period)
		}
	}
	return out
}

// EMA computes the exponential moving average seeded by the first n-period
// simple average, aligned to rows period-1..N-1.
func EMA(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, len(values)-period+1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[0] = seed

	alpha := 2.0 / (float64(period) + 1)
	prev := seed
	for i := period; i < len(values); i++ {
		prev = (values[i]-prev)*alpha + prev
		out[i-period+1] = prev
	}
	return out
}

// RSI computes the Wilder-smoothed Relative Strength Index, aligned to
// rows period-1..N-1. The seed averages the first period-1 price changes
// so that RSI shares the uniform "defined from row n-1" convention of the
// warm-up table; Wilder smoothing applies from row period onward. A
// constant series (no gains, no losses) reports the neutral value 50.
func RSI(closes []float64, period int) []float64 {
	if period <= 1 || len(closes) < period {
		return nil
	}
	out := make([]float64, len(closes)-period+1)

	var avgGain, avgLoss float64
	for i := 1; i < period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period - 1)
	avgLoss /= float64(period - 1)
	out[0] = rsiValue(avgGain, avgLoss)

	for i := period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i-period+1] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50.0
		}
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}

// MACD computes the MACD line (EMA12 - EMA26, aligned to rows 25..N-1)
// and its signal line (EMA9 of the MACD line, aligned to rows 33..N-1).
func MACD(closes []float64) (line, signal []float64) {
	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)
	if ema26 == nil {
		return nil, nil
	}

	// ema12 starts at row 11, ema26 at row 25; drop the extra ema12 head.
	offset := Warmup[models.IndicatorEMA26] - Warmup[models.IndicatorEMA12]
	line = make([]float64, len(ema26))
	for i := range ema26 {
		line[i] = ema12[i+offset] - ema26[i]
	}

	signal = EMA(line, 9)
	return line, signal
}

// Bollinger computes the 20-period Bollinger Bands at ±2σ, each aligned to
// rows 19..N-1. The standard deviation is the population deviation of the
// trailing window.
func Bollinger(closes []float64, period int, width float64) (upper, middle, lower []float64) {
	middle = SMA(closes, period)
	if middle == nil {
		return nil, nil, nil
	}
	upper = make([]float64, len(middle))
	lower = make([]float64, len(middle))
	for i := range middle {
		window := closes[i : i+period]
		std := populationStd(window, middle[i])
		upper[i] = middle[i] + width*std
		lower[i] = middle[i] - width*std
	}
	return upper, middle, lower
}

// Stochastic computes %K over kPeriod bars of high/low/close and %D as a
// dPeriod simple average of %K. %K is aligned to rows kPeriod-1..N-1 and
// %D dPeriod-1 rows later. A flat high/low window reports 50.
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) (k, d []float64) {
	if kPeriod <= 0 || len(closes) < kPeriod {
		return nil, nil
	}
	k = make([]float64, len(closes)-kPeriod+1)
	for i := kPeriod - 1; i < len(closes); i++ {
		hi := highs[i-kPeriod+1]
		lo := lows[i-kPeriod+1]
		for j := i - kPeriod + 2; j <= i; j++ {
			if highs[j] > hi {
				hi = highs[j]
			}
			if lows[j] < lo {
				lo = lows[j]
			}
		}
		if hi == lo {
			k[i-kPeriod+1] = 50.0
		} else {
			k[i-kPeriod+1] = (closes[i] - lo) / (hi - lo) * 100.0
		}
	}
	d = SMA(k, dPeriod)
	return k, d
}

// RollingVolatility computes the annualized rolling volatility of daily
// log returns, aligned to rows window-1..N-1. The variance of the
// trailing returns is scaled by 252 before the square root. The first row
// of the output uses window-1 returns (row 0 has no return); every later
// row uses a full window. A constant window yields exactly zero.
func RollingVolatility(closes []float64, window int) []float64 {
	logrets := LogReturns(closes)
	return RollingVolatilityFromReturns(logrets, window, len(closes))
}

// RollingVolatilityFromReturns is RollingVolatility over a precomputed
// (possibly outlier-clipped) log-return series aligned to rows 1..N-1.
func RollingVolatilityFromReturns(logrets []float64, window, n int) []float64 {
	if window <= 1 || n < window {
		return nil
	}
	out := make([]float64, n-window+1)
	for i := window - 1; i < n; i++ {
		// logrets[j-1] is the return of row j; the window covers rows
		// max(1, i-window+1)..i.
		start := i - window + 1
		if start < 1 {
			start = 1
		}
		sub := logrets[start-1 : i]
		m := meanOf(sub)
		variance := 0.0
		for _, v := range sub {
			d := v - m
			variance += d * d
		}
		variance /= float64(len(sub))
		out[i-window+1] = math.Sqrt(variance * TradingDaysPerYear)
	}
	return out
}

// AnnualizedVolatility reduces the trailing window log returns of a close
// series to one annualized volatility figure. Returns 0 when fewer than
// two closes are available.
func AnnualizedVolatility(closes []float64, window int) float64 {
	logrets := LogReturns(closes)
	if len(logrets) == 0 {
		return 0
	}
	if len(logrets) > window {
		logrets = logrets[len(logrets)-window:]
	}
	m := meanOf(logrets)
	variance := 0.0
	for _, v := range logrets {
		d := v - m
		variance += d * d
	}
	variance /= float64(len(logrets))
	return math.Sqrt(variance * TradingDaysPerYear)
}
