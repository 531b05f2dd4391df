package product

import (
	"context"
	"strings"

	"luxe-storefront/internal/domain"
	productrepo "luxe-storefront/internal/repository/product"
)

// LatestLimit is how many arrivals the storefront highlights.
const LatestLimit = 6

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// List returns the catalog, optionally narrowed to one category.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *Service) Latest(ctx context.Context) ([]domain.Product, error) {
	return s.repo.Latest(ctx, LatestLimit)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}
