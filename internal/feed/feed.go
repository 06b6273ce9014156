// Package feed supplies raw OHLCV bar series for the analysis pipeline.
package feed

import (
	"context"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// Fetcher returns the raw bar series for a symbol over a period at an
// interval. Implementations perform all blocking I/O here, before the
// computation pipeline runs.
type Fetcher interface {
	FetchBars(ctx context.Context, symbol, period, interval string) (*models.BarSeries, error)
}
