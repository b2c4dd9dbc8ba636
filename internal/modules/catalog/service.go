package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"rentalhub/internal/domain"
	"rentalhub/internal/repository"
)

var ErrNotFound = errors.New("not found")

// Service is the read side of the catalog. Brand and product management
// happens elsewhere; the booking UI only needs to browse and resolve.
type Service struct {
	brands   BrandRepository
	products ProductRepository
}

func NewService(brands BrandRepository, products ProductRepository) *Service {
	return &Service{brands: brands, products: products}
}

func (s *Service) ListBrands(ctx context.Context, limit, offset int) ([]domain.Brand, error) {
	return s.brands.List(ctx, true, limit, offset)
}

func (s *Service) GetBrand(ctx context.Context, id int64) (*domain.Brand, error) {
	b, err := s.brands.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *Service) ListProducts(ctx context.Context, brandID int64, limit, offset int) ([]domain.Product, error) {
	return s.products.List(ctx, repository.ProductFilter{
		BrandID:    brandID,
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrNotFound
	}
	return p, nil
}
