package product

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
	"luxe-storefront/internal/migrate"
)

func TestPostgres_UpsertListGet(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, zerolog.Nop())

	created, err := repo.Upsert(ctx, domain.Product{
		Key:        "silk-blouse",
		Name:       "Opulent Silk Blouse",
		Category:   "Tops",
		PriceCents: 18500,
		Sizes:      []string{"S", "M"},
		Stock:      4,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if created.ID == "" || created.Currency != "PKR" {
		t.Fatalf("unexpected product %+v", created)
	}

	updated, err := repo.Upsert(ctx, domain.Product{
		Key:        "silk-blouse",
		Name:       "Opulent Silk Blouse",
		Category:   "Tops",
		PriceCents: 19000,
		Sizes:      []string{"S", "M", "L"},
		Stock:      2,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != created.ID || updated.PriceCents != 19000 || len(updated.Sizes) != 3 {
		t.Fatalf("unexpected updated product %+v", updated)
	}

	tops, err := repo.List(ctx, "tops")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(tops) != 1 {
		t.Fatalf("expected 1 product, got %d", len(tops))
	}
	none, err := repo.List(ctx, "Footwear")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %v %v", none, err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.HasSize("L") || got.Stock != 2 {
		t.Fatalf("unexpected product %+v", got)
	}

	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
