package repository

import (
	"context"

	"gorm.io/gorm"

	"rentalhub/internal/domain"
)

type BrandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) *BrandRepository {
	return &BrandRepository{db: db}
}

func (r *BrandRepository) GetByID(ctx context.Context, id int64) (*domain.Brand, error) {
	var b domain.Brand
	err := r.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetOwnerID resolves the user who owns a brand. Returns 0 when the brand
// does not exist.
func (r *BrandRepository) GetOwnerID(ctx context.Context, brandID int64) (int64, error) {
	var ownerID int64
	tx := r.db.WithContext(ctx).
		Model(&domain.Brand{}).
		Where("id = ?", brandID).
		Pluck("owner_id", &ownerID)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return ownerID, nil
}

// ListOwnedBy returns the brand ids belonging to a user, used to scope
// dashboard listings.
func (r *BrandRepository) ListOwnedBy(ctx context.Context, ownerID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Brand{}).
		Where("owner_id = ?", ownerID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *BrandRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]domain.Brand, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&domain.Brand{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var rows []domain.Brand
	err := q.Order("name").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
