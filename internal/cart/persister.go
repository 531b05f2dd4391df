package cart

import (
	"context"

	"luxe-storefront/internal/domain"
)

// Persister saves cart lines keyed by session id.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Save(ctx context.Context, sessionID string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

// NopPersister keeps carts in memory only; a restart discards them.
type NopPersister struct{}

func (NopPersister) Load(context.Context, string) ([]domain.CartLine, error) { return nil, nil }

func (NopPersister) Save(context.Context, string, []domain.CartLine) error { return nil }

func (NopPersister) Delete(context.Context, string) error { return nil }
