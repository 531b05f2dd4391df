package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
	"luxe-storefront/internal/session"
)

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type persister interface {
	PersistCart(ctx context.Context, s *session.Session) error
}

// Service validates cart requests against the catalog before they reach the
// session's store, and writes every change through to the persister.
type Service struct {
	products productRepo
	persist  persister
	logger   zerolog.Logger
}

func New(products productRepo, persist persister, logger zerolog.Logger) *Service {
	return &Service{products: products, persist: persist, logger: logger}
}

type LineInput struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Add puts quantity units of the product in the given size into the cart.
func (s *Service) Add(ctx context.Context, sess *session.Session, in LineInput) (domain.CartLine, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return domain.CartLine{}, domain.Invalid("productId", "required")
	}
	size := strings.TrimSpace(in.Size)
	if size == "" {
		return domain.CartLine{}, domain.Invalid("size", "please select a size")
	}
	if in.Quantity < 0 {
		return domain.CartLine{}, domain.Invalid("quantity", "must not be negative")
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.CartLine{}, domain.Invalid("productId", "product not found")
		}
		return domain.CartLine{}, err
	}
	if len(product.Sizes) > 0 && !product.HasSize(size) {
		return domain.CartLine{}, domain.Invalid("size", fmt.Sprintf("%q is not offered", size))
	}

	line := sess.Cart().AddLine(*product, size, in.Quantity)
	s.persistCart(ctx, sess)
	return line, nil
}

// SetQuantity overwrites a line's quantity; zero or less removes the line.
// Positive quantities are held to the store's stock policy.
func (s *Service) SetQuantity(ctx context.Context, sess *session.Session, in LineInput) error {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return domain.Invalid("productId", "required")
	}
	size := strings.TrimSpace(in.Size)
	qty := in.Quantity
	if qty > 0 {
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.Invalid("productId", "product not found")
			}
			return err
		}
		qty = sess.Cart().Limit(*product, qty)
	}
	sess.Cart().SetQuantity(productID, size, qty)
	s.persistCart(ctx, sess)
	return nil
}

func (s *Service) Remove(ctx context.Context, sess *session.Session, productID, size string) error {
	sess.Cart().RemoveLine(strings.TrimSpace(productID), strings.TrimSpace(size))
	s.persistCart(ctx, sess)
	return nil
}

func (s *Service) Clear(ctx context.Context, sess *session.Session) error {
	sess.Cart().Clear()
	s.persistCart(ctx, sess)
	return nil
}

// persistCart writes the cart through. The in-memory store stays
// authoritative, so a failed save is logged and the change stands.
func (s *Service) persistCart(ctx context.Context, sess *session.Session) {
	if err := s.persist.PersistCart(ctx, sess); err != nil {
		s.logger.Warn().Err(err).Str("session", sess.ID).Msg("persist cart")
	}
}
