package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantmill/momentum/internal/contracts"
)

// Repository appends order intents to the order ledger.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an order ledger repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Append inserts a batch of orders inside one transaction.
func (r *Repository) Append(ctx context.Context, orders []contracts.Order) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO momentum.order_ledger (
			order_id, symbol, order_type, order_status,
			strategy, universe, year, month,
			placement_date, reference_price, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, o := range orders {
		_, err := tx.Exec(ctx, query,
			o.ID, o.Symbol, o.Type, o.Status,
			o.Strategy, o.Universe, o.Month.Year, o.Month.Month,
			o.PlacementDate, o.ReferencePrice, o.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order %s (%s): %w", o.ID, o.Symbol, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit orders: %w", err)
	}

	return nil
}

// ListByMonth returns the ledger entries placed for one strategy month.
func (r *Repository) ListByMonth(ctx context.Context, strategy, universe string, month contracts.MonthKey) ([]contracts.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT order_id, symbol, order_type, order_status,
		       strategy, universe, year, month,
		       placement_date, reference_price, created_at
		FROM momentum.order_ledger
		WHERE strategy = $1 AND universe = $2 AND year = $3 AND month = $4
		ORDER BY order_type, symbol
	`, strategy, universe, month.Year, month.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders for %s: %w", month, err)
	}
	defer rows.Close()

	var out []contracts.Order
	for rows.Next() {
		var o contracts.Order
		if err := rows.Scan(
			&o.ID, &o.Symbol, &o.Type, &o.Status,
			&o.Strategy, &o.Universe, &o.Month.Year, &o.Month.Month,
			&o.PlacementDate, &o.ReferencePrice, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order to a new ledger status.
func (r *Repository) UpdateStatus(ctx context.Context, orderID string, status contracts.OrderStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE momentum.order_ledger SET order_status = $2 WHERE order_id = $1`,
		orderID, status,
	)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order %s not found", orderID)
	}
	return nil
}
