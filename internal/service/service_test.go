package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockview/stock-analysis-system/internal/analysis"
	"github.com/stockview/stock-analysis-system/internal/cache"
	"github.com/stockview/stock-analysis-system/internal/models"
)

// stubFetcher serves canned series per symbol and counts fetches
type stubFetcher struct {
	mu     sync.Mutex
	series map[string]*models.BarSeries
	calls  map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		series: make(map[string]*models.BarSeries),
		calls:  make(map[string]int),
	}
}

func (f *stubFetcher) FetchBars(_ context.Context, symbol, period, interval string) (*models.BarSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	s, ok := f.series[symbol]
	if !ok {
		return nil, analysis.NewError(analysis.ErrNoData, symbol, period, interval, "no data returned")
	}
	return s, nil
}

func (f *stubFetcher) fetchCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[symbol]
}

// stubRepo records persistence calls
type stubRepo struct {
	mu        sync.Mutex
	bars      []*models.PriceBar
	snapshots []*models.IndicatorSnapshot
	watchlist map[string]*models.WatchlistEntry
}

func newStubRepo() *stubRepo {
	return &stubRepo{watchlist: make(map[string]*models.WatchlistEntry)}
}

func (r *stubRepo) UpsertPriceBarBatch(bars []*models.PriceBar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bars = append(r.bars, bars...)
	return nil
}

func (r *stubRepo) UpsertIndicatorSnapshotBatch(snapshots []*models.IndicatorSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snapshots...)
	return nil
}

func (r *stubRepo) CreateWatchlistEntry(w *models.WatchlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchlist[w.Symbol] = w
	return nil
}

func (r *stubRepo) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.watchlist[symbol]
	if !ok {
		return nil, fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return w, nil
}

func (r *stubRepo) GetAllWatchlistEntries() ([]*models.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WatchlistEntry
	for _, w := range r.watchlist {
		out = append(out, w)
	}
	return out, nil
}

func (r *stubRepo) GetEnabledWatchlistEntries() ([]*models.WatchlistEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WatchlistEntry
	for _, w := range r.watchlist {
		if w.Enabled {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *stubRepo) DeleteWatchlistEntry(symbol string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.watchlist, symbol)
	return nil
}

// makeSeries builds a linear close series with consistent OHLC
func makeSeries(symbol string, n int, start, step float64) *models.BarSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		c := start + step*float64(i)
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000 + int64(i),
		}
	}
	return &models.BarSeries{Symbol: symbol, Period: "1y", Interval: "1d", Bars: bars}
}

func TestAnalyzeComputesAndCaches(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["AAPL"] = makeSeries("AAPL", 60, 100, 0.5)
	svc := New(fetcher, cache.NewMemory())
	ctx := context.Background()

	payload, cached, err := svc.Analyze(ctx, "AAPL", "1y", "1d", false)
	require.NoError(t, err)
	assert.False(t, cached)
	require.NotNil(t, payload.Summary)
	assert.Equal(t, "AAPL", payload.Symbol)
	assert.Len(t, payload.Series, 60)
	assert.Equal(t, 60, payload.Cleaning.CleanedCount)

	// Second call must be served from cache without another fetch
	again, cached, err := svc.Analyze(ctx, "AAPL", "1y", "1d", false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, payload.Summary.LastClose, again.Summary.LastClose)
	assert.Equal(t, 1, fetcher.fetchCount("AAPL"))
}

func TestAnalyzeRefreshBypassesCache(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["AAPL"] = makeSeries("AAPL", 60, 100, 0.5)
	svc := New(fetcher, cache.NewMemory())
	ctx := context.Background()

	_, _, err := svc.Analyze(ctx, "AAPL", "1y", "1d", false)
	require.NoError(t, err)

	_, cached, err := svc.Analyze(ctx, "AAPL", "1y", "1d", true)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 2, fetcher.fetchCount("AAPL"))
}

func TestAnalyzePersistsBarsAndSnapshots(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["AAPL"] = makeSeries("AAPL", 60, 100, 0.5)
	repo := newStubRepo()
	svc := New(fetcher, cache.NewMemory(), WithRepository(repo))

	_, _, err := svc.Analyze(context.Background(), "AAPL", "1y", "1d", false)
	require.NoError(t, err)

	assert.Len(t, repo.bars, 60)

	// With 60 rows every indicator has warmed up, so all 14 snapshots exist
	assert.Len(t, repo.snapshots, 14)
	types := make(map[string]bool)
	for _, s := range repo.snapshots {
		types[s.IndicatorType] = true
		assert.Equal(t, "AAPL", s.Symbol)
		assert.Equal(t, "daily", s.Timeframe)
	}
	assert.True(t, types[models.IndicatorRSI14])
	assert.True(t, types[models.IndicatorVol20])
}

func TestAnalyzeShortSeriesSkipsWarmupSnapshots(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["NEW"] = makeSeries("NEW", 10, 50, 0.1)
	repo := newStubRepo()
	svc := New(fetcher, cache.NewMemory(), WithRepository(repo))

	_, _, err := svc.Analyze(context.Background(), "NEW", "1y", "1d", false)
	require.NoError(t, err)

	// Only SMA5 is defined at row 9; everything else is still warming up
	require.Len(t, repo.snapshots, 1)
	assert.Equal(t, models.IndicatorSMA5, repo.snapshots[0].IndicatorType)
}

func TestAnalyzeUnknownSymbolReturnsNoData(t *testing.T) {
	svc := New(newStubFetcher(), cache.NewMemory())

	_, _, err := svc.Analyze(context.Background(), "NOPE", "1y", "1d", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrNoData)
}

func TestAnalyzeBatchIsolatesFailures(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["AAPL"] = makeSeries("AAPL", 60, 100, 0.5)
	fetcher.series["MSFT"] = makeSeries("MSFT", 60, 400, -0.3)
	svc := New(fetcher, cache.NewMemory(), WithBatchParallelism(2))

	result := svc.AnalyzeBatch(context.Background(), []string{"AAPL", "BAD", "MSFT"}, "1y", "1d", false)

	assert.Len(t, result.Results, 2)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors["BAD"], "no data")
}

func TestForecastComputesAndCaches(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["AAPL"] = makeSeries("AAPL", 60, 100, 0.5)
	svc := New(fetcher, cache.NewMemory())
	ctx := context.Background()

	target := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 70)

	f, cached, err := svc.Forecast(ctx, "AAPL", target, false)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "AAPL", f.Symbol)
	assert.NotEmpty(t, f.Points)

	f2, cached, err := svc.Forecast(ctx, "AAPL", target, false)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, f.PredictedPrice, f2.PredictedPrice)
	assert.Equal(t, 1, fetcher.fetchCount("AAPL"))
}

func TestForecastBatchAggregates(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["UP"] = makeSeries("UP", 60, 100, 1.0)
	fetcher.series["DOWN"] = makeSeries("DOWN", 60, 100, -1.0)
	svc := New(fetcher, cache.NewMemory(), WithBatchParallelism(2))

	target := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 70)
	result := svc.ForecastBatch(context.Background(), []string{"UP", "DOWN", "BAD"}, target, false)

	assert.Len(t, result.Results, 2)
	assert.Equal(t, 2, result.Summary.TotalSymbols)
	assert.Equal(t, 1, result.Summary.BullishCount)
	assert.Equal(t, 1, result.Summary.BearishCount)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors, "BAD")
}

func TestPrewarmWatchlist(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.series["AAPL"] = makeSeries("AAPL", 60, 100, 0.5)
	fetcher.series["MSFT"] = makeSeries("MSFT", 60, 400, 0.2)
	repo := newStubRepo()
	svc := New(fetcher, cache.NewMemory(), WithRepository(repo))

	require.NoError(t, repo.CreateWatchlistEntry(&models.WatchlistEntry{
		Symbol: "AAPL", Enabled: true, Period: "1y", Interval: "1d",
	}))
	require.NoError(t, repo.CreateWatchlistEntry(&models.WatchlistEntry{
		Symbol: "MSFT", Enabled: true, Period: "1y", Interval: "1d",
	}))
	require.NoError(t, repo.CreateWatchlistEntry(&models.WatchlistEntry{
		Symbol: "DISABLED", Enabled: false, Period: "1y", Interval: "1d",
	}))

	warmed, err := svc.PrewarmWatchlist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, warmed)

	// Warmed symbols are now served from cache
	_, cached, err := svc.Analyze(context.Background(), "AAPL", "1y", "1d", false)
	require.NoError(t, err)
	assert.True(t, cached)
}
