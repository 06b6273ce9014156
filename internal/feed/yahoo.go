package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/stockview/stock-analysis-system/internal/analysis"
	"github.com/stockview/stock-analysis-system/internal/models"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooClient fetches bar series from the Yahoo Finance chart API. A
// token-bucket limiter keeps the request rate below the unauthenticated
// API's tolerance.
type YahooClient struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewYahooClient creates a Yahoo Finance fetcher. baseURL may be empty
// for the public endpoint; requestsPerSecond bounds the outbound rate.
func NewYahooClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *YahooClient {
	if baseURL == "" {
		baseURL = defaultYahooBaseURL
	}
	return &YahooClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// FetchBars retrieves the chart data for symbol and converts it to a
// date-ascending bar series. Bars with a null or non-positive close are
// dropped here; full consistency cleaning happens in the pipeline.
func (y *YahooClient) FetchBars(ctx context.Context, symbol, period, interval string) (*models.BarSeries, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		y.baseURL, url.PathEscape(symbol), url.QueryEscape(period), url.QueryEscape(interval))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chart response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s returned status %d", symbol, resp.StatusCode)
	}

	return parseChart(body, symbol, period, interval)
}

func parseChart(body []byte, symbol, period, interval string) (*models.BarSeries, error) {
	if desc := gjson.GetBytes(body, "chart.error.description"); desc.Exists() && desc.String() != "" {
		return nil, fmt.Errorf("chart api error for %s: %s", symbol, desc.String())
	}

	result := gjson.GetBytes(body, "chart.result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, analysis.NewError(analysis.ErrNoData, symbol, period, interval, "feed returned no bars")
	}

	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	bars := make([]models.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || closes[i].Type == gjson.Null {
			continue
		}
		closePrice := closes[i].Float()
		if closePrice <= 0 {
			continue
		}
		bar := models.Bar{
			Date:  time.Unix(ts.Int(), 0).UTC(),
			Close: closePrice,
		}
		if i < len(opens) {
			bar.Open = opens[i].Float()
		}
		if i < len(highs) {
			bar.High = highs[i].Float()
		}
		if i < len(lows) {
			bar.Low = lows[i].Float()
		}
		if i < len(volumes) {
			bar.Volume = volumes[i].Int()
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, analysis.NewError(analysis.ErrNoData, symbol, period, interval, "all bars invalid")
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return &models.BarSeries{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Bars:     bars,
	}, nil
}
