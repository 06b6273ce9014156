package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// UpsertIndicatorSnapshot inserts or updates one indicator snapshot.
func (db *DB) UpsertIndicatorSnapshot(s *models.IndicatorSnapshot) error {
	query := `
		INSERT INTO indicator_snapshots (symbol, date, indicator_type, value, timeframe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, date, indicator_type, timeframe) DO UPDATE SET
			value = EXCLUDED.value
		RETURNING id
	`
	if s.Timeframe == "" {
		s.Timeframe = "daily"
	}
	err := db.conn.QueryRow(query,
		s.Symbol, s.Date, s.IndicatorType, s.Value, s.Timeframe, time.Now(),
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert indicator snapshot: %w", err)
	}
	return nil
}

// UpsertIndicatorSnapshotBatch inserts or updates multiple snapshots
// in one transaction.
func (db *DB) UpsertIndicatorSnapshotBatch(snapshots []*models.IndicatorSnapshot) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO indicator_snapshots (symbol, date, indicator_type, value, timeframe, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol, date, indicator_type, timeframe) DO UPDATE SET
			value = EXCLUDED.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, s := range snapshots {
		timeframe := s.Timeframe
		if timeframe == "" {
			timeframe = "daily"
		}
		_, err := stmt.Exec(s.Symbol, s.Date, s.IndicatorType, s.Value, timeframe, now)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", s.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLatestIndicatorSnapshots retrieves the most recent snapshot of each
// indicator type for a symbol.
func (db *DB) GetLatestIndicatorSnapshots(symbol string) ([]*models.IndicatorSnapshot, error) {
	query := `
		SELECT DISTINCT ON (indicator_type)
			id, symbol, date, indicator_type, value, timeframe, created_at
		FROM indicator_snapshots
		WHERE symbol = $1
		ORDER BY indicator_type, date DESC
	`
	rows, err := db.conn.Query(query, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.IndicatorSnapshot
	for rows.Next() {
		var s models.IndicatorSnapshot
		err := rows.Scan(
			&s.ID, &s.Symbol, &s.Date, &s.IndicatorType, &s.Value, &s.Timeframe, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan indicator snapshot: %w", err)
		}
		snapshots = append(snapshots, &s)
	}

	return snapshots, nil
}

// GetIndicatorSnapshot retrieves one indicator for a symbol on a date.
func (db *DB) GetIndicatorSnapshot(symbol string, date time.Time, indicatorType, timeframe string) (*models.IndicatorSnapshot, error) {
	if timeframe == "" {
		timeframe = "daily"
	}
	query := `
		SELECT id, symbol, date, indicator_type, value, timeframe, created_at
		FROM indicator_snapshots
		WHERE symbol = $1 AND date = $2 AND indicator_type = $3 AND timeframe = $4
	`
	var s models.IndicatorSnapshot
	err := db.conn.QueryRow(query, symbol, date, indicatorType, timeframe).Scan(
		&s.ID, &s.Symbol, &s.Date, &s.IndicatorType, &s.Value, &s.Timeframe, &s.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("indicator snapshot not found: %s %s on %s", symbol, indicatorType, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get indicator snapshot: %w", err)
	}
	return &s, nil
}

// DeleteIndicatorSnapshotsBySymbol removes all snapshots for a symbol.
func (db *DB) DeleteIndicatorSnapshotsBySymbol(symbol string) error {
	query := `DELETE FROM indicator_snapshots WHERE symbol = $1`
	_, err := db.conn.Exec(query, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete indicator snapshots for %s: %w", symbol, err)
	}
	return nil
}
