package order

import (
	"context"

	"luxe-storefront/internal/domain"
)

// Repository is the single authoritative order ledger. Customer history and
// the operator view are both reads over it.
type Repository interface {
	Place(ctx context.Context, o domain.Order, enforceStock bool) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
	ListAll(ctx context.Context, limit int) ([]domain.Order, error)
}
