package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
)

const productColumns = `id::text, key, name, category, COALESCE(description, ''), price_cents, currency, sizes, details, image, stock, created_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) List(ctx context.Context, category string) ([]domain.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products`
	var args []interface{}
	if category != "" {
		q += ` WHERE lower(category) = lower($1)`
		args = append(args, category)
	}
	q += ` ORDER BY category, name`
	products, err := r.query(ctx, q, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("category", category).Msg("product repo: list")
		return nil, err
	}
	r.logger.Debug().Str("category", category).Int("count", len(products)).Msg("product repo: list")
	return products, nil
}

func (r *postgresRepo) Latest(ctx context.Context, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 6
	}
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// invalid uuid syntax
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == "22P02") {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("id", id).Msg("product repo: get")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	sizes, err := json.Marshal(nonNil(product.Sizes))
	if err != nil {
		return nil, err
	}
	details, err := json.Marshal(nonNil(product.Details))
	if err != nil {
		return nil, err
	}
	const q = `
INSERT INTO products (key, name, category, description, price_cents, currency, sizes, details, image, stock)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
ON CONFLICT (key) DO UPDATE SET
    name = EXCLUDED.name,
    category = EXCLUDED.category,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    sizes = EXCLUDED.sizes,
    details = EXCLUDED.details,
    image = EXCLUDED.image,
    stock = EXCLUDED.stock
RETURNING ` + productColumns
	currency := product.Currency
	if currency == "" {
		currency = "PKR"
	}
	res, err := scanProduct(r.pool.QueryRow(ctx, q,
		product.Key,
		product.Name,
		product.Category,
		product.Description,
		product.PriceCents,
		currency,
		sizes,
		details,
		product.Image,
		product.Stock,
	))
	if err != nil {
		r.logger.Error().Err(err).Str("key", product.Key).Msg("product repo: upsert")
		return nil, fmt.Errorf("upsert product %s: %w", product.Key, err)
	}
	r.logger.Debug().Str("key", res.Key).Str("id", res.ID).Msg("product repo: upserted")
	return res, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...interface{}) ([]domain.Product, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var sizes, details []byte
	if err := row.Scan(&p.ID, &p.Key, &p.Name, &p.Category, &p.Description, &p.PriceCents, &p.Currency, &sizes, &details, &p.Image, &p.Stock, &p.CreatedAt); err != nil {
		return nil, err
	}
	if len(sizes) > 0 {
		if err := json.Unmarshal(sizes, &p.Sizes); err != nil {
			return nil, fmt.Errorf("decode sizes for %s: %w", p.ID, err)
		}
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &p.Details); err != nil {
			return nil, fmt.Errorf("decode details for %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
