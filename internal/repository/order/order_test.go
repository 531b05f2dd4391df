package order

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
	"luxe-storefront/internal/migrate"
)

func TestPostgres_PlaceAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	customerID, productID := seedFixtures(ctx, t, pool, 3)
	repo := NewPostgres(pool, zerolog.Nop())

	placed, err := repo.Place(ctx, newOrder(customerID, productID, 2), true)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if placed.ID == "" || placed.Status != domain.OrderStatusProcessing || len(placed.Items) != 1 {
		t.Fatalf("unexpected order %+v", placed)
	}
	if placed.Shipping.City != "Lahore" {
		t.Fatalf("shipping not stored: %+v", placed.Shipping)
	}

	var stock int
	if err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	if stock != 1 {
		t.Fatalf("expected stock 1, got %d", stock)
	}

	if _, err := repo.Place(ctx, newOrder(customerID, productID, 2), true); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if _, err := repo.Place(ctx, newOrder(customerID, productID, 5), false); err != nil {
		t.Fatalf("Place without enforcement: %v", err)
	}

	mine, err := repo.ListByCustomer(ctx, customerID)
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(mine))
	}
	all, err := repo.ListAll(ctx, 10)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListAll: %d %v", len(all), err)
	}

	got, err := repo.GetByID(ctx, placed.ID)
	if err != nil || got.TotalCents != placed.TotalCents {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if _, err := repo.GetByID(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func newOrder(customerID, productID string, qty int) domain.Order {
	return domain.Order{
		CustomerID:    customerID,
		CustomerEmail: "buyer@example.com",
		Items:         []domain.OrderItem{{ProductID: productID, Name: "Coat", Size: "M", Quantity: qty, UnitPriceCents: 85000}},
		TotalCents:    85000 * int64(qty),
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: domain.PaymentCashOnDelivery,
		Shipping:      domain.Shipping{FullName: "Buyer", Email: "buyer@example.com", Address: "1 Road", City: "Lahore", PostalCode: "54000"},
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE orders, tokens, profiles, customers, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return pool
}

func seedFixtures(ctx context.Context, t *testing.T, pool *pgxpool.Pool, stock int) (string, string) {
	t.Helper()
	var customerID, productID string
	if err := pool.QueryRow(ctx, `INSERT INTO customers (email) VALUES ('buyer@example.com') RETURNING id::text`).Scan(&customerID); err != nil {
		t.Fatalf("insert customer: %v", err)
	}
	if err := pool.QueryRow(ctx, `
		INSERT INTO products (key, name, category, price_cents, sizes, stock)
		VALUES ('coat', 'Elysian Cashmere Coat', 'Outerwear', 85000, '["S","M","L"]'::jsonb, $1)
		RETURNING id::text`, stock).Scan(&productID); err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return customerID, productID
}
