package catalog

import (
	"context"

	"rentalhub/internal/domain"
	"rentalhub/internal/repository"
)

type BrandRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Brand, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.Brand, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error)
}
