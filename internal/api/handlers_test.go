package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockview/stock-analysis-system/internal/analysis"
	"github.com/stockview/stock-analysis-system/internal/cache"
	"github.com/stockview/stock-analysis-system/internal/models"
	"github.com/stockview/stock-analysis-system/internal/service"
)

type fakeFetcher struct {
	series map[string]*models.BarSeries
}

func (f *fakeFetcher) FetchBars(_ context.Context, symbol, period, interval string) (*models.BarSeries, error) {
	s, ok := f.series[symbol]
	if !ok {
		return nil, analysis.NewError(analysis.ErrNoData, symbol, period, interval, "no data returned")
	}
	return s, nil
}

type fakeRepo struct {
	watchlist map[string]*models.WatchlistEntry
}

func (r *fakeRepo) UpsertPriceBarBatch([]*models.PriceBar) error { return nil }

func (r *fakeRepo) UpsertIndicatorSnapshotBatch([]*models.IndicatorSnapshot) error { return nil }

func (r *fakeRepo) CreateWatchlistEntry(w *models.WatchlistEntry) error {
	if w.Period == "" {
		w.Period = "1y"
	}
	if w.Interval == "" {
		w.Interval = "1d"
	}
	w.AddedAt = time.Now()
	r.watchlist[w.Symbol] = w
	return nil
}

func (r *fakeRepo) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	w, ok := r.watchlist[symbol]
	if !ok {
		return nil, fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return w, nil
}

func (r *fakeRepo) GetAllWatchlistEntries() ([]*models.WatchlistEntry, error) {
	var out []*models.WatchlistEntry
	for _, w := range r.watchlist {
		out = append(out, w)
	}
	return out, nil
}

func (r *fakeRepo) GetEnabledWatchlistEntries() ([]*models.WatchlistEntry, error) {
	var out []*models.WatchlistEntry
	for _, w := range r.watchlist {
		if w.Enabled {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteWatchlistEntry(symbol string) error {
	if _, ok := r.watchlist[symbol]; !ok {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	delete(r.watchlist, symbol)
	return nil
}

func testSeries(symbol string, n int) *models.BarSeries {
	base := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := 0; i < n; i++ {
		c := 100 + 0.5*float64(i)
		bars[i] = models.Bar{
			Date:   base.AddDate(0, 0, i),
			Open:   c - 0.5,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 1000,
		}
	}
	return &models.BarSeries{Symbol: symbol, Period: "1y", Interval: "1d", Bars: bars}
}

func setupTestRouter(t *testing.T) http.Handler {
	t.Helper()
	fetcher := &fakeFetcher{series: map[string]*models.BarSeries{
		"AAPL": testSeries("AAPL", 60),
		"MSFT": testSeries("MSFT", 60),
	}}
	repo := &fakeRepo{watchlist: make(map[string]*models.WatchlistEntry)}
	svc := service.New(fetcher, cache.NewMemory(), service.WithRepository(repo))
	return SetupRoutes(NewHandler(svc))
}

func doRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)
	rec := doRequest(router, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestGetAnalysis(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "GET", "/api/v1/analysis/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var payload models.AnalysisPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "AAPL", payload.Symbol)
	assert.Len(t, payload.Series, 60)
	require.NotNil(t, payload.Summary)
	assert.NotEmpty(t, payload.Summary.Recommendation)

	// Repeat request is a cache hit
	rec = doRequest(router, "GET", "/api/v1/analysis/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestGetAnalysisUnknownSymbol(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "GET", "/api/v1/analysis/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "no data")
}

func TestBatchAnalysis(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "POST", "/api/v1/analysis/batch", map[string]interface{}{
		"symbols": []string{"AAPL", "MSFT", "BAD"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.BatchAnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Results, 2)
	assert.Contains(t, result.Errors, "BAD")
}

func TestBatchAnalysisValidation(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"empty symbols", map[string]interface{}{"symbols": []string{}}},
		{"missing symbols", map[string]interface{}{"period": "1y"}},
		{"blank symbol", map[string]interface{}{"symbols": []string{""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(router, "POST", "/api/v1/analysis/batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestExportAnalysisCSV(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "GET", "/api/v1/analysis/AAPL/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 61) // header + 60 rows

	header := records[0]
	assert.Equal(t, []string{"date", "open", "high", "low", "close", "volume"}, header[:6])
	assert.Equal(t, "rsi14", header[13])

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}

	// Row 0 has no derived values at all
	assert.Empty(t, records[1][col["ret"]])
	assert.Empty(t, records[1][col["sma5"]])

	// Row 4 is the first with SMA5, still inside the SMA20 warm-up
	assert.NotEmpty(t, records[5][col["sma5"]])
	assert.Empty(t, records[5][col["sma20"]])

	// The final row has everything
	last := records[60]
	assert.NotEmpty(t, last[col["sma50"]])
	assert.NotEmpty(t, last[col["macd_signal"]])
	assert.NotEmpty(t, last[col["vol20"]])
}

func TestGetForecast(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "GET", "/api/v1/forecast/AAPL?target=2026-03-20", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var f models.Forecast
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "AAPL", f.Symbol)
	assert.NotEmpty(t, f.Points)
	assert.Greater(t, f.PredictedPrice, 0.0)
}

func TestGetForecastBadTargets(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing target", "", http.StatusBadRequest},
		{"malformed target", "03/20/2026", http.StatusBadRequest},
		{"target before history", "2025-01-01", http.StatusBadRequest},
		{"horizon too long", "2030-01-01", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/v1/forecast/AAPL"
			if tt.target != "" {
				path += "?target=" + tt.target
			}
			rec := doRequest(router, "GET", path, nil)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestBatchForecast(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "POST", "/api/v1/forecast/batch", map[string]interface{}{
		"symbols":     []string{"AAPL", "MSFT"},
		"target_date": "2026-03-20",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result service.BatchForecastResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Results, 2)
	assert.Equal(t, 2, result.Summary.TotalSymbols)
}

func TestWatchlistCRUD(t *testing.T) {
	router := setupTestRouter(t)

	// Create
	rec := doRequest(router, "POST", "/api/v1/watchlist", map[string]interface{}{
		"symbol": "AAPL",
		"notes":  "core holding",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry models.WatchlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "AAPL", entry.Symbol)
	assert.True(t, entry.Enabled)
	assert.Equal(t, "1y", entry.Period)

	// List
	rec = doRequest(router, "GET", "/api/v1/watchlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []*models.WatchlistEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)

	// Get one
	rec = doRequest(router, "GET", "/api/v1/watchlist/AAPL", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Delete
	rec = doRequest(router, "DELETE", "/api/v1/watchlist/AAPL", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// Gone now
	rec = doRequest(router, "GET", "/api/v1/watchlist/AAPL", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWatchlistValidation(t *testing.T) {
	router := setupTestRouter(t)

	rec := doRequest(router, "POST", "/api/v1/watchlist", map[string]interface{}{
		"notes": "no symbol",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
