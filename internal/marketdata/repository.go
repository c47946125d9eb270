package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads daily price/volume data and universe membership
// from PostgreSQL.
// ⭐ SSOT: market data persistence lives here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new market data repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UniverseSymbols returns the constituents of an index universe.
func (r *Repository) UniverseSymbols(ctx context.Context, universe string) ([]string, error) {
	query := `
		SELECT symbol
		FROM data.index_constituents
		WHERE index_name = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, universe)
	if err != nil {
		return nil, fmt.Errorf("failed to query constituents for %s: %w", universe, err)
	}
	defer rows.Close()

	symbols := make([]string, 0, 512)
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan constituent: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("constituents query failed: %w", err)
	}

	return symbols, nil
}

// LoadMatrices materialises price and volume matrices for a universe
// over [from, to]. Missing (symbol, date) cells stay 0, the engine's
// "no trade" marker.
func (r *Repository) LoadMatrices(ctx context.Context, universe string, from, to time.Time) (*Matrix, *Matrix, error) {
	symbols, err := r.UniverseSymbols(ctx, universe)
	if err != nil {
		return nil, nil, err
	}
	if len(symbols) == 0 {
		return nil, nil, fmt.Errorf("universe %s has no constituents", universe)
	}

	query := `
		SELECT trade_date, symbol, close, volume
		FROM data.daily_prices
		WHERE index_name = $1 AND trade_date BETWEEN $2 AND $3
		ORDER BY trade_date, symbol
	`

	rows, err := r.pool.Query(ctx, query, universe, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query daily prices: %w", err)
	}
	defer rows.Close()

	known := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		known[s] = true
	}

	dates := make([]time.Time, 0, 4096)
	dateRow := make(map[int64]int)
	type cell struct {
		row    int
		symbol string
		close  float64
		volume float64
	}
	cells := make([]cell, 0, 1<<16)

	for rows.Next() {
		var (
			tradeDate time.Time
			symbol    string
			closePx   float64
			volume    float64
		)
		if err := rows.Scan(&tradeDate, &symbol, &closePx, &volume); err != nil {
			return nil, nil, fmt.Errorf("failed to scan daily price: %w", err)
		}
		if !known[symbol] {
			continue
		}

		key := dateKey(tradeDate)
		rowNum, ok := dateRow[key]
		if !ok {
			rowNum = len(dates)
			dateRow[key] = rowNum
			dates = append(dates, Day(tradeDate))
		}
		cells = append(cells, cell{row: rowNum, symbol: symbol, close: closePx, volume: volume})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("daily prices query failed: %w", err)
	}
	if len(dates) == 0 {
		return nil, nil, fmt.Errorf("no daily prices for %s between %s and %s",
			universe, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	priceCols := make(map[string][]float64, len(symbols))
	volumeCols := make(map[string][]float64, len(symbols))
	for _, s := range symbols {
		priceCols[s] = make([]float64, len(dates))
		volumeCols[s] = make([]float64, len(dates))
	}
	for _, c := range cells {
		priceCols[c.symbol][c.row] = c.close
		volumeCols[c.symbol][c.row] = c.volume
	}

	prices, err := NewMatrix(dates, symbols, priceCols)
	if err != nil {
		return nil, nil, err
	}
	volumes, err := NewMatrix(dates, symbols, volumeCols)
	if err != nil {
		return nil, nil, err
	}
	return prices, volumes, nil
}
