package analysis

import (
	"math"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// Clean drops bars a downstream indicator cannot safely consume: any bar
// with a non-finite or non-positive close, non-positive open/high/low, or
// internally inconsistent OHLC (high below low, or close/open outside the
// high/low range). Negative volumes are clamped to zero. Order is
// preserved; the summary reports how many bars were removed.
func Clean(bars []models.Bar) ([]models.Bar, models.CleaningSummary) {
	cleaned := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		if !validBar(b) {
			continue
		}
		if b.Volume < 0 {
			b.Volume = 0
		}
		cleaned = append(cleaned, b)
	}

	summary := models.CleaningSummary{
		OriginalCount: len(bars),
		CleanedCount:  len(cleaned),
		RemovedCount:  len(bars) - len(cleaned),
	}
	if len(bars) > 0 {
		summary.CleaningRatio = float64(len(cleaned)) / float64(len(bars))
	}
	return cleaned, summary
}

func validBar(b models.Bar) bool {
	for _, p := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			return false
		}
	}
	if b.High < b.Low {
		return false
	}
	if b.Close > b.High || b.Close < b.Low {
		return false
	}
	if b.Open > b.High || b.Open < b.Low {
		return false
	}
	return true
}
