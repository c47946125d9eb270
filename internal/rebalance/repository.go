package rebalance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantmill/momentum/internal/contracts"
)

// Repository persists monthly portfolios, keyed by
// (strategy, universe, year, month).
// ⭐ SSOT: portfolio persistence lives here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a portfolio repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts a month's portfolio. The holdings and diff sets are
// stored as a JSONB document; the key columns stay relational so the
// recurrence lookup is an index hit.
func (r *Repository) Save(ctx context.Context, strategy, universe string, p *contracts.Portfolio) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio: %w", err)
	}

	query := `
		INSERT INTO momentum.portfolios (
			strategy, universe, year, month, aggregate_return, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (strategy, universe, year, month) DO UPDATE SET
			aggregate_return = EXCLUDED.aggregate_return,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at
	`

	_, err = r.pool.Exec(ctx, query,
		strategy, universe, p.Month.Year, p.Month.Month,
		p.AggregateReturn, payload, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save portfolio %s/%s %s: %w", strategy, universe, p.Month, err)
	}

	return nil
}

// Latest loads the most recent stored month for a universe, or
// (nil, nil) when nothing has been persisted yet.
func (r *Repository) Latest(ctx context.Context, strategy, universe string) (*contracts.Portfolio, error) {
	query := `
		SELECT payload
		FROM momentum.portfolios
		WHERE strategy = $1 AND universe = $2
		ORDER BY year DESC, month DESC
		LIMIT 1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, strategy, universe).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest portfolio %s/%s: %w", strategy, universe, err)
	}

	var p contracts.Portfolio
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal latest portfolio %s/%s: %w", strategy, universe, err)
	}

	return &p, nil
}

// Fetch loads a month's portfolio. A missing month returns (nil, nil):
// "no prior month" is a legitimate state at inception, not an error.
func (r *Repository) Fetch(ctx context.Context, strategy, universe string, month contracts.MonthKey) (*contracts.Portfolio, error) {
	query := `
		SELECT payload
		FROM momentum.portfolios
		WHERE strategy = $1 AND universe = $2 AND year = $3 AND month = $4
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, strategy, universe, month.Year, month.Month).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch portfolio %s/%s %s: %w", strategy, universe, month, err)
	}

	var p contracts.Portfolio
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal portfolio %s/%s %s: %w", strategy, universe, month, err)
	}

	return &p, nil
}
