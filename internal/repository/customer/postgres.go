package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
)

const profileColumns = `customer_id::text, name, email, address, avatar_url, to_char(joined, 'YYYY-MM-DD'), updated_at`

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger zerolog.Logger) Repository {
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	provider := c.Provider
	if provider == "" {
		provider = "password"
	}
	const q = `
INSERT INTO customers (email, password_hash, provider)
VALUES ($1, $2, $3)
RETURNING id::text, email, password_hash, provider, created_at
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, strings.ToLower(c.Email), c.PasswordHash, provider))
}

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, provider, created_at
FROM customers
WHERE lower(email) = lower($1)
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, email))
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	const q = `
SELECT id::text, email, password_hash, provider, created_at
FROM customers
WHERE id = $1
LIMIT 1
`
	return r.scanCustomer(r.pool.QueryRow(ctx, q, id))
}

// EnsureProfile inserts defaults for a first-time customer and otherwise
// keeps whatever the customer already stored.
func (r *postgresRepo) EnsureProfile(ctx context.Context, defaults domain.Profile) (*domain.Profile, error) {
	address := defaults.Address
	if address == "" {
		address = domain.DefaultAddress
	}
	const q = `
INSERT INTO profiles (customer_id, name, email, address, avatar_url)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (customer_id) DO UPDATE SET email = EXCLUDED.email
RETURNING ` + profileColumns
	p, err := scanProfile(r.pool.QueryRow(ctx, q, defaults.CustomerID, defaults.Name, defaults.Email, address, defaults.AvatarURL))
	if err != nil {
		r.logger.Error().Err(err).Str("customer", defaults.CustomerID).Msg("customer repo: ensure profile")
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) GetProfile(ctx context.Context, customerID string) (*domain.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE customer_id = $1`, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresRepo) UpdateProfile(ctx context.Context, customerID string, upd ProfileUpdate) (*domain.Profile, error) {
	const q = `
UPDATE profiles
SET name = COALESCE($2, name),
    address = COALESCE($3, address),
    avatar_url = COALESCE($4, avatar_url),
    updated_at = now()
WHERE customer_id = $1
RETURNING ` + profileColumns
	p, err := scanProfile(r.pool.QueryRow(ctx, q, customerID, upd.Name, upd.Address, upd.AvatarURL))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error().Err(err).Str("customer", customerID).Msg("customer repo: update profile")
		return nil, err
	}
	r.logger.Info().Str("customer", customerID).Msg("customer repo: profile updated")
	return p, nil
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Email, &c.PasswordHash, &c.Provider, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.ErrAlreadyExists
		}
		r.logger.Error().Err(err).Msg("customer repo: scan")
		return nil, err
	}
	return &c, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.CustomerID, &p.Name, &p.Email, &p.Address, &p.AvatarURL, &p.Joined, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
