package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
)

const orderColumns = `id::text, customer_id::text, customer_email, items, total_cents, status, payment_method, shipping, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

// Place writes the order in one transaction. With enforceStock the product
// rows are locked and decremented first, so concurrent buyers cannot both
// take the last unit.
func (r *postgresRepo) Place(ctx context.Context, o domain.Order, enforceStock bool) (*domain.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	shipping, err := json.Marshal(o.Shipping)
	if err != nil {
		return nil, fmt.Errorf("encode shipping: %w", err)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if enforceStock {
		if err := reserveStock(ctx, tx, o.Items); err != nil {
			return nil, err
		}
	}

	const q = `
INSERT INTO orders (customer_id, customer_email, items, total_cents, status, payment_method, shipping)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderColumns
	placed, err := scanOrder(tx.QueryRow(ctx, q, o.CustomerID, o.CustomerEmail, items, o.TotalCents, o.Status, o.PaymentMethod, shipping))
	if err != nil {
		r.logger.Error().Err(err).Str("customer", o.CustomerID).Msg("order repo: insert")
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	r.logger.Info().Str("order", placed.ID).Str("customer", placed.CustomerID).Int64("total", placed.TotalCents).Msg("order repo: placed")
	return placed, nil
}

// reserveStock locks product rows in id order to avoid deadlocks between
// overlapping orders, then decrements by the summed quantity per product.
func reserveStock(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error {
	need := make(map[string]int)
	for _, it := range items {
		need[it.ProductID] += it.Quantity
	}
	ids := make([]string, 0, len(need))
	for id := range need {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, id).Scan(&stock)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") {
				return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
			}
			return err
		}
		if stock < need[id] {
			return fmt.Errorf("product %s wants %d, %d left: %w", id, need[id], stock, domain.ErrInsufficientStock)
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`, id, need[id]); err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

func (r *postgresRepo) ListAll(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *postgresRepo) list(ctx context.Context, q string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("order repo: list")
		return nil, err
	}
	defer rows.Close()

	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var items, shipping []byte
	if err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerEmail, &items, &o.TotalCents, &o.Status, &o.PaymentMethod, &shipping, &o.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(shipping, &o.Shipping); err != nil {
		return nil, fmt.Errorf("decode shipping for %s: %w", o.ID, err)
	}
	return &o, nil
}
