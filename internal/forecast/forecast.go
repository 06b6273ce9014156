// Package forecast fits a linear trend to recent closes and projects it
// to a target date with volatility-widened confidence bounds. It is a
// simple trend extrapolation, not a statistical time-series model; the
// reported confidence score is a descriptive decay only.
package forecast

import (
	"fmt"
	"math"
	"time"

	"github.com/stockview/stock-analysis-system/internal/analysis"
	"github.com/stockview/stock-analysis-system/internal/models"
)

// Engine parameters.
const (
	MinPoints        = 10  // bars required before a fit is attempted
	MaxHorizonDays   = 365 // cap on days beyond the last historical date
	RegressionWindow = 30  // trailing observations fed to the regression
	volatilityWindow = 20

	confidenceBase  = 100.0
	confidenceDecay = 2.0 // points lost per projected day
	zQuantile95     = 1.96

	// Annualized-volatility bands (percent) for the risk classification.
	lowRiskVolPct    = 20.0
	mediumRiskVolPct = 35.0
)

// Compute projects the series forward to targetDate. Validation failures
// (too few points, target not strictly in the future, horizon beyond the
// cap) abort before the regression runs; no partial forecast is returned.
func Compute(series *models.BarSeries, targetDate time.Time) (*models.Forecast, error) {
	if series == nil || len(series.Bars) == 0 {
		return nil, analysis.NewError(analysis.ErrNoData, symbolOf(series), periodOf(series), intervalOf(series), "empty bar series")
	}
	symbol := series.Symbol
	if len(series.Bars) < MinPoints {
		return nil, analysis.NewError(analysis.ErrInsufficientData, symbol, series.Period, series.Interval,
			fmt.Sprintf("forecast requires at least %d points, got %d", MinPoints, len(series.Bars)))
	}

	lastBar := series.Bars[len(series.Bars)-1]
	lastDate := dateOnly(lastBar.Date)
	target := dateOnly(targetDate)

	days := int(target.Sub(lastDate).Hours() / 24)
	if days <= 0 {
		return nil, analysis.NewError(analysis.ErrInvalidTargetDate, symbol, series.Period, series.Interval,
			fmt.Sprintf("target %s is not after last historical date %s",
				target.Format("2006-01-02"), lastDate.Format("2006-01-02")))
	}
	if days > MaxHorizonDays {
		return nil, analysis.NewError(analysis.ErrHorizonTooLong, symbol, series.Period, series.Interval,
			fmt.Sprintf("horizon of %d days exceeds the %d day cap", days, MaxHorizonDays))
	}

	closes := series.Closes()
	window := closes
	if len(window) > RegressionWindow {
		window = window[len(window)-RegressionWindow:]
	}

	slope, intercept, r2 := linearFit(window)
	vol := analysis.AnnualizedVolatility(closes, volatilityWindow)

	points := make([]models.ForecastPoint, days)
	for i := 1; i <= days; i++ {
		predicted := intercept + slope*float64(len(window)-1+i)
		halfWidth := vol * math.Sqrt(float64(i)) * zQuantile95
		points[i-1] = models.ForecastPoint{
			Date:       lastDate.AddDate(0, 0, i),
			Predicted:  predicted,
			Lower:      math.Max(0, predicted-halfWidth),
			Upper:      math.Max(0, predicted+halfWidth),
			Confidence: math.Max(0, confidenceBase-confidenceDecay*float64(i)),
		}
	}

	current := lastBar.Close
	predicted := points[len(points)-1].Predicted
	change := predicted - current
	changePct := 0.0
	if current != 0 {
		changePct = change / current * 100
	}
	volPct := vol * 100

	f := &models.Forecast{
		Symbol:          symbol,
		TargetDate:      target,
		CurrentPrice:    current,
		PredictedPrice:  predicted,
		PriceChange:     change,
		PriceChangePct:  changePct,
		VolatilityPct:   volPct,
		RiskLevel:       riskLevel(volPct),
		TrendDirection:  models.DirectionUpward,
		MarketSentiment: models.SentimentBullish,
		Points:          points,
		Slope:           slope,
		Intercept:       intercept,
		RSquared:        r2,
		Volatility:      vol,
		WindowLength:    len(window),
		ComputedAt:      time.Now().UTC(),
	}
	if change < 0 {
		f.TrendDirection = models.DirectionDownward
		f.MarketSentiment = models.SentimentBearish
	}
	return f, nil
}

// linearFit runs an ordinary least-squares regression of the values
// against a zero-based index. A perfectly flat series is a perfect fit of
// the zero-slope line, so its R² is 1.
func linearFit(values []float64) (slope, intercept, r2 float64) {
	n := float64(len(values))
	if len(values) == 1 {
		return 0, values[0], 1
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssTot, ssRes float64
	for i, y := range values {
		fit := intercept + slope*float64(i)
		ssRes += (y - fit) * (y - fit)
		ssTot += (y - meanY) * (y - meanY)
	}
	if ssTot == 0 {
		return slope, intercept, 1
	}
	return slope, intercept, 1 - ssRes/ssTot
}

// riskLevel buckets an annualized volatility percentage.
func riskLevel(volPct float64) string {
	switch {
	case volPct < lowRiskVolPct:
		return models.RiskLow
	case volPct < mediumRiskVolPct:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func symbolOf(s *models.BarSeries) string {
	if s == nil {
		return ""
	}
	return s.Symbol
}

func periodOf(s *models.BarSeries) string {
	if s == nil {
		return ""
	}
	return s.Period
}

func intervalOf(s *models.BarSeries) string {
	if s == nil {
		return ""
	}
	return s.Interval
}
