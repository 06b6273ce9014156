package analysis

import (
	"math"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// Summary parameters.
const (
	trendWindow       = 20
	trendThresholdPct = 5.0
	riskFreeRate      = 0.02
	lookback52        = 252
)

// Summarize reduces a non-empty feature-row sequence to its scalar
// statistics and a trade recommendation using the default scoring.
func Summarize(rows []models.FeatureRow) (*models.Summary, error) {
	return SummarizeWith(rows, DefaultScoring())
}

// SummarizeWith is Summarize with explicit scoring parameters.
func SummarizeWith(rows []models.FeatureRow, scoring ScoringConfig) (*models.Summary, error) {
	if len(rows) == 0 {
		return nil, NewError(ErrNoData, "", "", "", "cannot summarize an empty series")
	}

	closes := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r.Close
	}

	first := closes[0]
	last := closes[len(closes)-1]
	change := last - first
	changePct := change / first * 100

	s := &models.Summary{
		FirstClose:     first,
		LastClose:      last,
		Change:         change,
		ChangePercent:  changePct,
		AvgDailyReturn: averageReturn(rows),
		MaxDrawdownPct: maxDrawdownPct(closes),
		Trend:          classifyTrend(closes),
		AvgVolume:      averageVolumeRows(rows),
	}

	tail := rows[len(rows)-1]
	s.Volatility = tail.Vol20
	s.LatestRSI = tail.RSI14
	s.LatestMACD = tail.MACD
	s.LatestStochK = tail.StochK
	s.SharpeRatio = sharpeRatio(rows)

	high, low := rangeHighLow(closes, lookback52)
	s.High52 = high
	s.Low52 = low
	if high > 0 {
		s.PctFromHigh52 = (last - high) / high * 100
	}
	if low > 0 {
		s.PctFromLow52 = (last - low) / low * 100
	}

	s.RecommendScore = scoring.Score(s.LatestRSI, s.LatestStochK, s.Trend, changePct)
	s.Recommendation = scoring.Recommend(s.RecommendScore)
	return s, nil
}

// classifyTrend compares the mean close of the most recent trendWindow
// rows against the mean of the preceding up-to-trendWindow rows. Fewer
// rows than one full window, or no preceding rows at all, is insufficient.
func classifyTrend(closes []float64) string {
	n := len(closes)
	if n < trendWindow {
		return models.TrendInsufficientData
	}

	recent := meanOf(closes[n-trendWindow:])
	start := n - 2*trendWindow
	if start < 0 {
		start = 0
	}
	earlier := closes[start : n-trendWindow]
	if len(earlier) == 0 {
		return models.TrendInsufficientData
	}

	prev := meanOf(earlier)
	if prev == 0 {
		return models.TrendSideways
	}
	diffPct := (recent - prev) / prev * 100
	switch {
	case diffPct > trendThresholdPct:
		return models.TrendBullish
	case diffPct < -trendThresholdPct:
		return models.TrendBearish
	default:
		return models.TrendSideways
	}
}

// maxDrawdownPct reports the largest running-peak-to-close decline as a
// percent. A monotonically non-decreasing series yields 0.
func maxDrawdownPct(closes []float64) float64 {
	peak := closes[0]
	maxDD := 0.0
	for _, c := range closes {
		if c > peak {
			peak = c
		}
		if peak > 0 {
			dd := (peak - c) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

// sharpeRatio annualizes the mean daily log return and its deviation and
// subtracts the risk-free rate. Undefined (nil) with fewer than two
// returns or zero volatility.
func sharpeRatio(rows []models.FeatureRow) *float64 {
	var logrets []float64
	for _, r := range rows {
		if r.LogReturn != nil {
			logrets = append(logrets, *r.LogReturn)
		}
	}
	if len(logrets) < 2 {
		return nil
	}

	mean := meanOf(logrets)
	std := populationStd(logrets, mean)
	if std == 0 {
		return nil
	}

	annReturn := mean * TradingDaysPerYear
	annVol := std * math.Sqrt(TradingDaysPerYear)
	sharpe := (annReturn - riskFreeRate) / annVol
	return &sharpe
}

func averageReturn(rows []models.FeatureRow) float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if r.Return != nil {
			sum += *r.Return
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func averageVolumeRows(rows []models.FeatureRow) float64 {
	var total int64
	for _, r := range rows {
		total += r.Volume
	}
	return float64(total) / float64(len(rows))
}

// rangeHighLow scans the trailing lookback closes for the high and low.
func rangeHighLow(closes []float64, lookback int) (high, low float64) {
	start := len(closes) - lookback
	if start < 0 {
		start = 0
	}
	high = closes[start]
	low = closes[start]
	for _, c := range closes[start:] {
		if c > high {
			high = c
		}
		if c < low {
			low = c
		}
	}
	return high, low
}
