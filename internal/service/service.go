package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phuslu/log"

	"github.com/stockview/stock-analysis-system/internal/analysis"
	"github.com/stockview/stock-analysis-system/internal/cache"
	"github.com/stockview/stock-analysis-system/internal/feed"
	"github.com/stockview/stock-analysis-system/internal/forecast"
	"github.com/stockview/stock-analysis-system/internal/models"
)

// Repository defines the persistence operations the service needs.
type Repository interface {
	UpsertPriceBarBatch(bars []*models.PriceBar) error
	UpsertIndicatorSnapshotBatch(snapshots []*models.IndicatorSnapshot) error
	CreateWatchlistEntry(w *models.WatchlistEntry) error
	GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error)
	GetAllWatchlistEntries() ([]*models.WatchlistEntry, error)
	GetEnabledWatchlistEntries() ([]*models.WatchlistEntry, error)
	DeleteWatchlistEntry(symbol string) error
}

// EventPublisher defines the outbound event operations the service needs.
type EventPublisher interface {
	PublishAnalysisCompleted(ctx context.Context, payload *models.AnalysisPayload) error
	PublishForecastCompleted(ctx context.Context, forecast *models.Forecast) error
}

// Service orchestrates the analysis pipeline: fetch, clean, compute,
// summarize, cache, persist, publish. Persistence and event publishing
// are best effort; a failure there never fails the request.
type Service struct {
	fetcher   feed.Fetcher
	cache     cache.Store
	repo      Repository
	publisher EventPublisher
	scoring   analysis.ScoringConfig
	parallel  int

	now func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRepository attaches a persistence layer.
func WithRepository(repo Repository) Option {
	return func(s *Service) { s.repo = repo }
}

// WithPublisher attaches an event publisher.
func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithScoring overrides the default recommendation scoring.
func WithScoring(cfg analysis.ScoringConfig) Option {
	return func(s *Service) { s.scoring = cfg }
}

// WithBatchParallelism sets the number of concurrent symbols in batch runs.
func WithBatchParallelism(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallel = n
		}
	}
}

// New creates a Service backed by the given fetcher and cache.
func New(fetcher feed.Fetcher, store cache.Store, opts ...Option) *Service {
	s := &Service{
		fetcher:  fetcher,
		cache:    store,
		scoring:  analysis.DefaultScoring(),
		parallel: 4,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze runs the full pipeline for one symbol. A fresh payload is
// computed only on cache miss or when refresh is set; the cached flag
// reports which path served the result.
func (s *Service) Analyze(ctx context.Context, symbol, period, interval string, refresh bool) (*models.AnalysisPayload, bool, error) {
	key := cache.Key(cache.KindAnalysis, symbol, period, interval)

	if !refresh {
		if payload, ok := s.getCachedAnalysis(ctx, key); ok {
			return payload, true, nil
		}
	}

	series, err := s.fetcher.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, false, err
	}

	cleaned, cleaning := analysis.Clean(series.Bars)
	if len(cleaned) == 0 {
		return nil, false, analysis.NewError(analysis.ErrNoData, symbol, period, interval,
			"no valid bars after cleaning")
	}

	rows := analysis.ComputeFeatures(cleaned)
	summary, err := analysis.SummarizeWith(rows, s.scoring)
	if err != nil {
		return nil, false, err
	}

	payload := &models.AnalysisPayload{
		Symbol:     symbol,
		Period:     period,
		Interval:   interval,
		Series:     rows,
		Summary:    summary,
		Cleaning:   cleaning,
		ComputedAt: s.now().UTC(),
	}

	s.setCached(ctx, key, payload, cache.TTLAnalysis)
	s.persistAnalysis(symbol, cleaned, rows)

	if s.publisher != nil {
		if err := s.publisher.PublishAnalysisCompleted(ctx, payload); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("failed to publish analysis event")
		}
	}

	return payload, false, nil
}

// Forecast projects the price of one symbol to a target date. Results are
// cached per symbol and target date.
func (s *Service) Forecast(ctx context.Context, symbol string, targetDate time.Time, refresh bool) (*models.Forecast, bool, error) {
	period := "1y"
	interval := "1d"
	key := cache.Key(cache.KindForecast, symbol, targetDate.Format("2006-01-02"), interval)

	if !refresh {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var f models.Forecast
			if err := json.Unmarshal(data, &f); err == nil {
				return &f, true, nil
			}
		}
	}

	series, err := s.fetcher.FetchBars(ctx, symbol, period, interval)
	if err != nil {
		return nil, false, err
	}

	cleaned, _ := analysis.Clean(series.Bars)
	series = &models.BarSeries{
		Symbol:   symbol,
		Period:   period,
		Interval: interval,
		Bars:     cleaned,
	}

	f, err := forecast.Compute(series, targetDate)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(f); err == nil {
		if err := s.cache.Set(ctx, key, data, cache.TTLForecast); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("failed to cache forecast")
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishForecastCompleted(ctx, f); err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("failed to publish forecast event")
		}
	}

	return f, false, nil
}

// InvalidateAnalysis drops the cached analysis for a symbol.
func (s *Service) InvalidateAnalysis(ctx context.Context, symbol, period, interval string) error {
	return s.cache.Delete(ctx, cache.Key(cache.KindAnalysis, symbol, period, interval))
}

func (s *Service) getCachedAnalysis(ctx context.Context, key string) (*models.AnalysisPayload, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var payload models.AnalysisPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to decode cached analysis")
		return nil, false
	}
	return &payload, true
}

func (s *Service) setCached(ctx context.Context, key string, payload *models.AnalysisPayload, ttl time.Duration) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to encode analysis for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// persistAnalysis stores cleaned bars and the latest indicator values.
// Failures are logged and swallowed; the analysis result is already built.
func (s *Service) persistAnalysis(symbol string, bars []models.Bar, rows []models.FeatureRow) {
	if s.repo == nil {
		return
	}

	priceBars := make([]*models.PriceBar, len(bars))
	for i, b := range bars {
		priceBars[i] = models.PriceBarFromBar(symbol, b)
	}
	if err := s.repo.UpsertPriceBarBatch(priceBars); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist price bars")
	}

	snapshots := latestSnapshots(symbol, rows)
	if len(snapshots) == 0 {
		return
	}
	if err := s.repo.UpsertIndicatorSnapshotBatch(snapshots); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist indicator snapshots")
	}
}

// latestSnapshots extracts the defined indicator values of the final row.
func latestSnapshots(symbol string, rows []models.FeatureRow) []*models.IndicatorSnapshot {
	if len(rows) == 0 {
		return nil
	}
	last := rows[len(rows)-1]

	values := []struct {
		indicator string
		value     *float64
	}{
		{models.IndicatorSMA5, last.SMA5},
		{models.IndicatorSMA20, last.SMA20},
		{models.IndicatorSMA50, last.SMA50},
		{models.IndicatorEMA12, last.EMA12},
		{models.IndicatorEMA26, last.EMA26},
		{models.IndicatorRSI14, last.RSI14},
		{models.IndicatorMACD, last.MACD},
		{models.IndicatorMACDSignal, last.MACDSignal},
		{models.IndicatorBBUpper, last.BBUpper},
		{models.IndicatorBBMiddle, last.BBMiddle},
		{models.IndicatorBBLower, last.BBLower},
		{models.IndicatorStochK, last.StochK},
		{models.IndicatorStochD, last.StochD},
		{models.IndicatorVol20, last.Vol20},
	}

	var snapshots []*models.IndicatorSnapshot
	for _, v := range values {
		if v.value == nil {
			continue
		}
		snapshots = append(snapshots, models.SnapshotFromFloat(symbol, last.Date, v.indicator, *v.value))
	}
	return snapshots
}

// Watchlist operations delegate to the repository.

var errNoRepository = fmt.Errorf("no repository configured")

// AddWatchlistEntry creates or updates a watchlist entry.
func (s *Service) AddWatchlistEntry(w *models.WatchlistEntry) error {
	if s.repo == nil {
		return errNoRepository
	}
	return s.repo.CreateWatchlistEntry(w)
}

// GetWatchlist returns all watchlist entries.
func (s *Service) GetWatchlist() ([]*models.WatchlistEntry, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}
	return s.repo.GetAllWatchlistEntries()
}

// GetWatchlistEntry returns one watchlist entry by symbol.
func (s *Service) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}
	return s.repo.GetWatchlistEntry(symbol)
}

// RemoveWatchlistEntry deletes a watchlist entry by symbol.
func (s *Service) RemoveWatchlistEntry(symbol string) error {
	if s.repo == nil {
		return errNoRepository
	}
	return s.repo.DeleteWatchlistEntry(symbol)
}

// EnabledWatchlistEntries returns entries eligible for scheduled pre-warming.
func (s *Service) EnabledWatchlistEntries() ([]*models.WatchlistEntry, error) {
	if s.repo == nil {
		return nil, errNoRepository
	}
	return s.repo.GetEnabledWatchlistEntries()
}
