package customer

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

func TestPostgres_CustomerAndProfile(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE orders, tokens, profiles, customers, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}

	repo := NewPostgres(pool, zerolog.Nop())
	c, err := repo.Create(ctx, domain.Customer{Email: "Ayesha@Example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.Email != "ayesha@example.com" || c.Provider != "password" {
		t.Fatalf("unexpected customer %+v", c)
	}
	if _, err := repo.Create(ctx, domain.Customer{Email: "ayesha@example.com"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "AYESHA@example.com")
	if err != nil || byEmail.ID != c.ID {
		t.Fatalf("GetByEmail: %+v %v", byEmail, err)
	}

	p, err := repo.EnsureProfile(ctx, domain.Profile{CustomerID: c.ID, Name: "ayesha", Email: c.Email})
	if err != nil {
		t.Fatalf("EnsureProfile: %v", err)
	}
	if p.Address != domain.DefaultAddress || p.Joined == "" {
		t.Fatalf("unexpected profile %+v", p)
	}

	addr := "12 Mall Road, Lahore"
	if _, err := repo.UpdateProfile(ctx, c.ID, ProfileUpdate{Address: &addr}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	again, err := repo.EnsureProfile(ctx, domain.Profile{CustomerID: c.ID, Name: "other", Email: c.Email})
	if err != nil {
		t.Fatalf("EnsureProfile again: %v", err)
	}
	if again.Address != addr || again.Name != "ayesha" {
		t.Fatalf("ensure must keep stored fields, got %+v", again)
	}

	if _, err := repo.GetProfile(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
