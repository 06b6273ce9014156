package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/phuslu/log"

	"github.com/stockview/stock-analysis-system/internal/analysis"
	"github.com/stockview/stock-analysis-system/internal/models"
	"github.com/stockview/stock-analysis-system/internal/service"
)

const (
	defaultPeriod   = "1y"
	defaultInterval = "1d"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	svc      *service.Service
	validate *validator.Validate
}

// NewHandler creates a new Handler
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(),
	}
}

// GetAnalysis handles GET /api/v1/analysis/{symbol}
func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	period, interval, refresh := analysisParams(r)

	payload, cached, err := h.svc.Analyze(r.Context(), symbol, period, interval, refresh)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(cached))
	respondJSON(w, http.StatusOK, payload)
}

// BatchAnalysisRequest is the POST /api/v1/analysis/batch body
type BatchAnalysisRequest struct {
	Symbols  []string `json:"symbols" validate:"required,min=1,max=50,dive,required"`
	Period   string   `json:"period"`
	Interval string   `json:"interval"`
	Refresh  bool     `json:"refresh"`
}

// BatchAnalysis handles POST /api/v1/analysis/batch
func (h *Handler) BatchAnalysis(w http.ResponseWriter, r *http.Request) {
	var req BatchAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Period == "" {
		req.Period = defaultPeriod
	}
	if req.Interval == "" {
		req.Interval = defaultInterval
	}

	result := h.svc.AnalyzeBatch(r.Context(), req.Symbols, req.Period, req.Interval, req.Refresh)
	respondJSON(w, http.StatusOK, result)
}

// ExportAnalysis handles GET /api/v1/analysis/{symbol}/export
func (h *Handler) ExportAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	period, interval, refresh := analysisParams(r)

	payload, _, err := h.svc.Analyze(r.Context(), symbol, period, interval, refresh)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s_%s_%s.csv", symbol, period, interval))
	if err := writeFeatureCSV(w, payload.Series); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("failed to write csv export")
	}
}

// GetForecast handles GET /api/v1/forecast/{symbol}
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	target, err := parseTargetDate(r.URL.Query().Get("target"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	f, cached, err := h.svc.Forecast(r.Context(), symbol, target, refresh)
	if err != nil {
		respondAnalysisError(w, err)
		return
	}

	w.Header().Set("X-Cache", cacheHeader(cached))
	respondJSON(w, http.StatusOK, f)
}

// BatchForecastRequest is the POST /api/v1/forecast/batch body
type BatchForecastRequest struct {
	Symbols    []string `json:"symbols" validate:"required,min=1,max=50,dive,required"`
	TargetDate string   `json:"target_date" validate:"required"`
	Refresh    bool     `json:"refresh"`
}

// BatchForecast handles POST /api/v1/forecast/batch
func (h *Handler) BatchForecast(w http.ResponseWriter, r *http.Request) {
	var req BatchForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	target, err := parseTargetDate(req.TargetDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.svc.ForecastBatch(r.Context(), req.Symbols, target, req.Refresh)
	respondJSON(w, http.StatusOK, result)
}

// WatchlistRequest is the POST /api/v1/watchlist body
type WatchlistRequest struct {
	Symbol   string `json:"symbol" validate:"required,max=12"`
	Enabled  *bool  `json:"enabled"`
	Period   string `json:"period"`
	Interval string `json:"interval"`
	Notes    string `json:"notes"`
}

// AddWatchlistEntry handles POST /api/v1/watchlist
func (h *Handler) AddWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	var req WatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	entry := &models.WatchlistEntry{
		Symbol:   req.Symbol,
		Enabled:  enabled,
		Period:   req.Period,
		Interval: req.Interval,
		Notes:    req.Notes,
	}
	if err := h.svc.AddWatchlistEntry(entry); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored, err := h.svc.GetWatchlistEntry(req.Symbol)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, stored)
}

// GetWatchlist handles GET /api/v1/watchlist
func (h *Handler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.GetWatchlist()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []*models.WatchlistEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetWatchlistEntry handles GET /api/v1/watchlist/{symbol}
func (h *Handler) GetWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	entry, err := h.svc.GetWatchlistEntry(symbol)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, entry)
}

// RemoveWatchlistEntry handles DELETE /api/v1/watchlist/{symbol}
func (h *Handler) RemoveWatchlistEntry(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	if err := h.svc.RemoveWatchlistEntry(symbol); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func analysisParams(r *http.Request) (period, interval string, refresh bool) {
	q := r.URL.Query()
	period = q.Get("period")
	if period == "" {
		period = defaultPeriod
	}
	interval = q.Get("interval")
	if interval == "" {
		interval = defaultInterval
	}
	refresh, _ = strconv.ParseBool(q.Get("refresh"))
	return period, interval, refresh
}

func parseTargetDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("target date is required (YYYY-MM-DD)")
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid target date %q, expected YYYY-MM-DD", raw)
	}
	return t, nil
}

func cacheHeader(cached bool) string {
	if cached {
		return "HIT"
	}
	return "MISS"
}

// featureColumns is the fixed export column order. Raw bar fields first,
// then derived values in their computation order.
var featureColumns = []struct {
	name  string
	value func(models.FeatureRow) *float64
}{
	{"ret", func(r models.FeatureRow) *float64 { return r.Return }},
	{"logret", func(r models.FeatureRow) *float64 { return r.LogReturn }},
	{"sma5", func(r models.FeatureRow) *float64 { return r.SMA5 }},
	{"sma20", func(r models.FeatureRow) *float64 { return r.SMA20 }},
	{"sma50", func(r models.FeatureRow) *float64 { return r.SMA50 }},
	{"ema12", func(r models.FeatureRow) *float64 { return r.EMA12 }},
	{"ema26", func(r models.FeatureRow) *float64 { return r.EMA26 }},
	{"rsi14", func(r models.FeatureRow) *float64 { return r.RSI14 }},
	{"macd", func(r models.FeatureRow) *float64 { return r.MACD }},
	{"macd_signal", func(r models.FeatureRow) *float64 { return r.MACDSignal }},
	{"bb_upper", func(r models.FeatureRow) *float64 { return r.BBUpper }},
	{"bb_middle", func(r models.FeatureRow) *float64 { return r.BBMiddle }},
	{"bb_lower", func(r models.FeatureRow) *float64 { return r.BBLower }},
	{"stoch_k", func(r models.FeatureRow) *float64 { return r.StochK }},
	{"stoch_d", func(r models.FeatureRow) *float64 { return r.StochD }},
	{"vol20", func(r models.FeatureRow) *float64 { return r.Vol20 }},
	{"volume_ratio", func(r models.FeatureRow) *float64 { return r.VolumeRatio }},
}

// writeFeatureCSV renders feature rows with a stable column order.
// Warm-up values render as empty cells, never as zero.
func writeFeatureCSV(w http.ResponseWriter, rows []models.FeatureRow) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "open", "high", "low", "close", "volume"}
	for _, c := range featureColumns {
		header = append(header, c.name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for _, row := range rows {
		record[0] = row.Date.Format("2006-01-02")
		record[1] = formatFloat(row.Open)
		record[2] = formatFloat(row.High)
		record[3] = formatFloat(row.Low)
		record[4] = formatFloat(row.Close)
		record[5] = strconv.FormatInt(row.Volume, 10)
		for i, c := range featureColumns {
			if v := c.value(row); v != nil {
				record[6+i] = formatFloat(*v)
			} else {
				record[6+i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// respondAnalysisError maps pipeline error kinds to HTTP statuses
func respondAnalysisError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, analysis.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, analysis.ErrInsufficientData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, analysis.ErrInvalidTargetDate),
		errors.Is(err, analysis.ErrHorizonTooLong):
		status = http.StatusBadRequest
	}
	respondError(w, status, err.Error())
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
