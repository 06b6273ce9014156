package forecast

import "github.com/stockview/stock-analysis-system/internal/models"

// SummarizeBatch aggregates the successful forecasts of a multi-symbol
// run. Failed slots are simply not passed in; an empty input yields a
// zero summary.
func SummarizeBatch(forecasts []*models.Forecast) models.BatchForecastSummary {
	s := models.BatchForecastSummary{}
	if len(forecasts) == 0 {
		return s
	}

	s.TotalSymbols = len(forecasts)
	s.HighestGain = forecasts[0].PriceChangePct
	s.LowestGain = forecasts[0].PriceChangePct

	var gainSum, volSum float64
	for _, f := range forecasts {
		gainSum += f.PriceChangePct
		volSum += f.VolatilityPct
		if f.PriceChangePct > s.HighestGain {
			s.HighestGain = f.PriceChangePct
		}
		if f.PriceChangePct < s.LowestGain {
			s.LowestGain = f.PriceChangePct
		}
		switch f.MarketSentiment {
		case models.SentimentBullish:
			s.BullishCount++
		case models.SentimentBearish:
			s.BearishCount++
		}
		switch f.RiskLevel {
		case models.RiskHigh:
			s.HighRiskCount++
		case models.RiskMedium:
			s.MediumRiskCount++
		case models.RiskLow:
			s.LowRiskCount++
		}
	}
	s.AverageGain = gainSum / float64(len(forecasts))
	s.AverageVolatility = volSum / float64(len(forecasts))
	return s
}
