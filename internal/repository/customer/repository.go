package customer

import (
	"context"

	"luxe-storefront/internal/domain"
)

// ProfileUpdate carries the profile fields a customer may change. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Name      *string
	Address   *string
	AvatarURL *string
}

// Repository persists accounts and their denormalized profiles.
type Repository interface {
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)

	EnsureProfile(ctx context.Context, defaults domain.Profile) (*domain.Profile, error)
	GetProfile(ctx context.Context, customerID string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, customerID string, upd ProfileUpdate) (*domain.Profile, error)
}
