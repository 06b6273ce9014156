package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// CreateWatchlistEntry adds a symbol to the watchlist, or updates it if
// already present.
func (db *DB) CreateWatchlistEntry(w *models.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (symbol, enabled, period, bar_interval, notes, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			period = EXCLUDED.period,
			bar_interval = EXCLUDED.bar_interval,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if w.Period == "" {
		w.Period = "1y"
	}
	if w.Interval == "" {
		w.Interval = "1d"
	}

	_, err := db.conn.Exec(query, w.Symbol, w.Enabled, w.Period, w.Interval, w.Notes, now, now)
	if err != nil {
		return fmt.Errorf("failed to create watchlist entry: %w", err)
	}
	w.AddedAt = now
	w.UpdatedAt = now
	return nil
}

// GetWatchlistEntry retrieves a watchlist entry by symbol.
func (db *DB) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, period, bar_interval, notes, added_at, updated_at
		FROM watchlist
		WHERE symbol = $1
	`
	var w models.WatchlistEntry
	var notes sql.NullString

	err := db.conn.QueryRow(query, symbol).Scan(
		&w.Symbol, &w.Enabled, &w.Period, &w.Interval, &notes, &w.AddedAt, &w.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}

	if notes.Valid {
		w.Notes = notes.String
	}
	return &w, nil
}

// GetAllWatchlistEntries retrieves the full watchlist ordered by symbol.
func (db *DB) GetAllWatchlistEntries() ([]*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, period, bar_interval, notes, added_at, updated_at
		FROM watchlist
		ORDER BY symbol ASC
	`
	return db.scanWatchlist(db.conn.Query(query))
}

// GetEnabledWatchlistEntries retrieves the enabled entries, which the
// scheduler pre-warms.
func (db *DB) GetEnabledWatchlistEntries() ([]*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, period, bar_interval, notes, added_at, updated_at
		FROM watchlist
		WHERE enabled = true
		ORDER BY symbol ASC
	`
	return db.scanWatchlist(db.conn.Query(query))
}

// DeleteWatchlistEntry removes a symbol from the watchlist.
func (db *DB) DeleteWatchlistEntry(symbol string) error {
	query := `DELETE FROM watchlist WHERE symbol = $1`
	result, err := db.conn.Exec(query, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return nil
}

func (db *DB) scanWatchlist(rows *sql.Rows, err error) ([]*models.WatchlistEntry, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		var w models.WatchlistEntry
		var notes sql.NullString
		err := rows.Scan(&w.Symbol, &w.Enabled, &w.Period, &w.Interval, &notes, &w.AddedAt, &w.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		if notes.Valid {
			w.Notes = notes.String
		}
		entries = append(entries, &w)
	}

	return entries, nil
}
