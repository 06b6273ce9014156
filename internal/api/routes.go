package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Analysis routes
	api.HandleFunc("/analysis/batch", handler.BatchAnalysis).Methods("POST")
	api.HandleFunc("/analysis/{symbol}", handler.GetAnalysis).Methods("GET")
	api.HandleFunc("/analysis/{symbol}/export", handler.ExportAnalysis).Methods("GET")

	// Forecast routes
	api.HandleFunc("/forecast/batch", handler.BatchForecast).Methods("POST")
	api.HandleFunc("/forecast/{symbol}", handler.GetForecast).Methods("GET")

	// Watchlist routes
	api.HandleFunc("/watchlist", handler.GetWatchlist).Methods("GET")
	api.HandleFunc("/watchlist", handler.AddWatchlistEntry).Methods("POST")
	api.HandleFunc("/watchlist/{symbol}", handler.GetWatchlistEntry).Methods("GET")
	api.HandleFunc("/watchlist/{symbol}", handler.RemoveWatchlistEntry).Methods("DELETE")

	return r
}
