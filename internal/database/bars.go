package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/stockview/stock-analysis-system/internal/models"
)

// UpsertPriceBar inserts or updates one price bar record.
func (db *DB) UpsertPriceBar(p *models.PriceBar) error {
	query := `
		INSERT INTO price_bars (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
		RETURNING id
	`
	err := db.conn.QueryRow(query,
		p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, time.Now(),
	).Scan(&p.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert price bar: %w", err)
	}
	return nil
}

// UpsertPriceBarBatch inserts or updates multiple price bars efficiently.
func (db *DB) UpsertPriceBarBatch(bars []*models.PriceBar) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO price_bars (symbol, date, open, high, low, close, volume, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range bars {
		_, err := stmt.Exec(p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume, now)
		if err != nil {
			return fmt.Errorf("failed to insert price bar for %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetPriceBarsBySymbol retrieves the most recent bars for a symbol,
// ordered by date descending.
func (db *DB) GetPriceBarsBySymbol(symbol string, limit int) ([]*models.PriceBar, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM price_bars
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT $2
	`
	return db.scanPriceBars(db.conn.Query(query, symbol, limit))
}

// GetPriceBarRange retrieves bars for a symbol within a date range,
// ordered by date ascending.
func (db *DB) GetPriceBarRange(symbol string, startDate, endDate time.Time) ([]*models.PriceBar, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM price_bars
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	return db.scanPriceBars(db.conn.Query(query, symbol, startDate, endDate))
}

// GetLatestPriceBar retrieves the most recent bar for a symbol.
func (db *DB) GetLatestPriceBar(symbol string) (*models.PriceBar, error) {
	query := `
		SELECT id, symbol, date, open, high, low, close, volume, created_at
		FROM price_bars
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`
	var p models.PriceBar
	err := db.conn.QueryRow(query, symbol).Scan(
		&p.ID, &p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no price bars found for %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price bar: %w", err)
	}
	return &p, nil
}

// DeletePriceBarsBySymbol removes all bars for a symbol.
func (db *DB) DeletePriceBarsBySymbol(symbol string) error {
	query := `DELETE FROM price_bars WHERE symbol = $1`
	_, err := db.conn.Exec(query, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete price bars for %s: %w", symbol, err)
	}
	return nil
}

// DeletePriceBarsOlderThan removes bars older than a specified date.
func (db *DB) DeletePriceBarsOlderThan(date time.Time) (int64, error) {
	query := `DELETE FROM price_bars WHERE date < $1`
	result, err := db.conn.Exec(query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price bars: %w", err)
	}
	return result.RowsAffected()
}

func (db *DB) scanPriceBars(rows *sql.Rows, err error) ([]*models.PriceBar, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query price bars: %w", err)
	}
	defer rows.Close()

	var bars []*models.PriceBar
	for rows.Next() {
		var p models.PriceBar
		err := rows.Scan(
			&p.ID, &p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price bar: %w", err)
		}
		bars = append(bars, &p)
	}

	return bars, nil
}
