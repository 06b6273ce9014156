package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stockview/stock-analysis-system/internal/forecast"
	"github.com/stockview/stock-analysis-system/internal/models"
)

// BatchAnalysisResult holds per-symbol analysis outcomes. Symbols that
// failed appear in Errors instead of Results; one bad symbol never fails
// the batch.
type BatchAnalysisResult struct {
	Results []*models.AnalysisPayload `json:"results"`
	Errors  map[string]string         `json:"errors,omitempty"`
}

// BatchForecastResult holds per-symbol forecasts plus aggregate statistics
// over the successful ones.
type BatchForecastResult struct {
	Results []*models.Forecast          `json:"results"`
	Summary models.BatchForecastSummary `json:"summary"`
	Errors  map[string]string           `json:"errors,omitempty"`
}

// AnalyzeBatch runs Analyze for each symbol with bounded concurrency.
// Result order follows the input symbol order.
func (s *Service) AnalyzeBatch(ctx context.Context, symbols []string, period, interval string, refresh bool) *BatchAnalysisResult {
	payloads := make([]*models.AnalysisPayload, len(symbols))
	errs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			payload, _, err := s.Analyze(gctx, symbol, period, interval, refresh)
			payloads[i] = payload
			errs[i] = err
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers never return errors, they record them per slot

	return &BatchAnalysisResult{
		Results: compactPayloads(payloads),
		Errors:  collectErrors(symbols, errs),
	}
}

// ForecastBatch runs Forecast for each symbol with bounded concurrency and
// aggregates the successful forecasts.
func (s *Service) ForecastBatch(ctx context.Context, symbols []string, targetDate time.Time, refresh bool) *BatchForecastResult {
	forecasts := make([]*models.Forecast, len(symbols))
	errs := make([]error, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			f, _, err := s.Forecast(gctx, symbol, targetDate, refresh)
			forecasts[i] = f
			errs[i] = err
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	ok := compactForecasts(forecasts)
	return &BatchForecastResult{
		Results: ok,
		Summary: forecast.SummarizeBatch(ok),
		Errors:  collectErrors(symbols, errs),
	}
}

// PrewarmWatchlist refreshes the analysis cache for every enabled
// watchlist entry. Used by the scheduler.
func (s *Service) PrewarmWatchlist(ctx context.Context) (int, error) {
	entries, err := s.EnabledWatchlistEntries()
	if err != nil {
		return 0, err
	}

	var warmed int
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallel)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if _, _, err := s.Analyze(gctx, entry.Symbol, entry.Period, entry.Interval, true); err == nil {
				mu.Lock()
				warmed++
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	return warmed, nil
}

func compactPayloads(payloads []*models.AnalysisPayload) []*models.AnalysisPayload {
	out := make([]*models.AnalysisPayload, 0, len(payloads))
	for _, p := range payloads {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func compactForecasts(forecasts []*models.Forecast) []*models.Forecast {
	out := make([]*models.Forecast, 0, len(forecasts))
	for _, f := range forecasts {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

func collectErrors(symbols []string, errs []error) map[string]string {
	var out map[string]string
	for i, err := range errs {
		if err == nil {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[symbols[i]] = err.Error()
	}
	return out
}
