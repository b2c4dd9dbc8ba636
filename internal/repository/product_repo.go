package repository

import (
	"context"

	"gorm.io/gorm"

	"rentalhub/internal/domain"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Preload("Brand").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type ProductFilter struct {
	BrandID    int64
	ActiveOnly bool
	Limit      int
	Offset     int
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.BrandID > 0 {
		q = q.Where("brand_id = ?", f.BrandID)
	}
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var rows []domain.Product
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
