package profile

import (
	"context"
	"net/url"
	"strings"

	"luxe-storefront/internal/domain"
	custrepo "luxe-storefront/internal/repository/customer"
)

// Service manages the denormalized profile stored next to each account.
// Every mutation is written through before it returns.
type Service struct {
	repo custrepo.Repository
}

func New(repo custrepo.Repository) *Service {
	return &Service{repo: repo}
}

// EnsureProfile returns the principal's profile, creating it on first
// sign-in with a name taken from the display name or the email local part.
func (s *Service) EnsureProfile(ctx context.Context, p domain.Principal) (*domain.Profile, error) {
	return s.repo.EnsureProfile(ctx, domain.Profile{
		CustomerID: p.CustomerID,
		Name:       defaultName(p),
		Email:      p.Email,
		Address:    domain.DefaultAddress,
	})
}

func (s *Service) Get(ctx context.Context, customerID string) (*domain.Profile, error) {
	return s.repo.GetProfile(ctx, customerID)
}

func (s *Service) UpdateAddress(ctx context.Context, customerID, address string) (*domain.Profile, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, domain.Invalid("address", "address is required")
	}
	return s.repo.UpdateProfile(ctx, customerID, custrepo.ProfileUpdate{Address: &address})
}

// UpdateAvatar stores an externally hosted image URL.
func (s *Service) UpdateAvatar(ctx context.Context, customerID, rawURL string) (*domain.Profile, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, domain.Invalid("avatarUrl", "must be an http(s) URL")
	}
	return s.repo.UpdateProfile(ctx, customerID, custrepo.ProfileUpdate{AvatarURL: &rawURL})
}

func defaultName(p domain.Principal) string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}
