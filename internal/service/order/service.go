package order

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"luxe-storefront/internal/domain"
	"luxe-storefront/internal/events"
	orderrepo "luxe-storefront/internal/repository/order"
)

// AdminListLimit caps the operator ledger page.
const AdminListLimit = 100

// Service turns a cart snapshot into a placed order.
type Service struct {
	repo         orderrepo.Repository
	publisher    events.Publisher
	enforceStock bool
	logger       zerolog.Logger
	now          func() time.Time
}

func New(repo orderrepo.Repository, publisher events.Publisher, enforceStock bool, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:         repo,
		publisher:    publisher,
		enforceStock: enforceStock,
		logger:       logger,
		now:          time.Now,
	}
}

// Place validates the shipping form and records the order. The caller owns
// the cart and clears it once Place succeeds.
func (s *Service) Place(ctx context.Context, p domain.Principal, lines []domain.CartLine, ship domain.Shipping) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.Invalid("cart", "your cart is empty")
	}
	ship = trimShipping(ship)
	if err := validateShipping(ship); err != nil {
		return nil, err
	}

	o := domain.Order{
		CustomerID:    p.CustomerID,
		CustomerEmail: p.Email,
		Items:         make([]domain.OrderItem, 0, len(lines)),
		Status:        domain.OrderStatusProcessing,
		PaymentMethod: domain.PaymentCashOnDelivery,
		Shipping:      ship,
		CreatedAt:     s.now().UTC(),
	}
	for _, l := range lines {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID:      l.ProductID,
			Name:           l.Name,
			Size:           l.Size,
			Quantity:       l.Quantity,
			UnitPriceCents: l.UnitPriceCents,
		})
		o.TotalCents += l.LineTotal()
	}

	placed, err := s.repo.Place(ctx, o, s.enforceStock)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("order", placed.ID).Str("customer", placed.CustomerID).Int64("total", placed.TotalCents).Msg("order placed")

	if err := s.publisher.OrderPlaced(ctx, *placed); err != nil {
		s.logger.Warn().Err(err).Str("order", placed.ID).Msg("publish order placed")
	}
	return placed, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// ListAll is the operator ledger, newest first.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx, AdminListLimit)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func trimShipping(in domain.Shipping) domain.Shipping {
	return domain.Shipping{
		FullName:   strings.TrimSpace(in.FullName),
		Email:      strings.TrimSpace(in.Email),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		PostalCode: strings.TrimSpace(in.PostalCode),
	}
}

func validateShipping(s domain.Shipping) error {
	required := []struct{ field, value string }{
		{"fullName", s.FullName},
		{"email", s.Email},
		{"address", s.Address},
		{"city", s.City},
		{"postalCode", s.PostalCode},
	}
	for _, r := range required {
		if r.value == "" {
			return domain.Invalid(r.field, "is required")
		}
	}
	if !strings.Contains(s.Email, "@") {
		return domain.Invalid("email", "must be a valid email address")
	}
	return nil
}
