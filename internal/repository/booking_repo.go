package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"rentalhub/internal/domain"
)

var (
	// ErrOverlap is returned when a create would violate the no-double-booking
	// guarantee, either by the in-transaction check or by the database
	// exclusion constraint.
	ErrOverlap       = errors.New("date range overlaps an active booking")
	ErrDuplicateCode = errors.New("booking code already exists")
)

// Statuses that block a product's date range.
var activeStatuses = []string{string(domain.BookingPending), string(domain.BookingConfirmed)}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindConflict returns the first PENDING/CONFIRMED booking whose inclusive
// [start_date, end_date] range touches the candidate range, or nil when the
// range is free. Boundaries count as conflicts: s1 <= e2 AND s2 <= e1.
func (r *BookingRepository) FindConflict(ctx context.Context, productID int64, start, end time.Time, excludeID int64) (*domain.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("status IN ?", activeStatuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Order("start_date")
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var b domain.Booking
	err := q.First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create re-checks the overlap inside one transaction and inserts. On
// Postgres the second committer of a cross-instance race additionally
// trips the idx_no_double_booking exclusion constraint installed by
// database.Migrate, which is surfaced as ErrOverlap.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&domain.Booking{}).
			Where("product_id = ?", b.ProductID).
			Where("status IN ?", activeStatuses).
			Where("start_date <= ? AND end_date >= ?", b.EndDate, b.StartDate).
			Count(&cnt).Error; err != nil {
			return err
		}
		if cnt > 0 {
			return ErrOverlap
		}
		return tx.Create(b).Error
	})
	return translateCreateError(err)
}

// translateCreateError maps Postgres constraint violations onto the
// repository sentinels: 23P01 (exclusion_violation) comes from the
// idx_no_double_booking range constraint, 23505 from the booking_code
// unique index.
func translateCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23P01":
			return ErrOverlap
		case "23505":
			return ErrDuplicateCode
		}
	}
	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Brand").
		First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Brand").
		Where("booking_code = ?", code).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("booking_code = ?", code).
		Count(&cnt).Error
	return cnt > 0, err
}

type BookingFilter struct {
	ProductID int64
	BrandID   int64
	// BrandIDs scopes a brand owner's dashboard listing to their brands.
	BrandIDs []int64
	UserID   int64
	Statuses []domain.BookingStatus
	DateFrom time.Time
	DateTo   time.Time
	Limit    int
	Offset   int
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.ProductID > 0 {
		q = q.Where("product_id = ?", f.ProductID)
	}
	if f.BrandID > 0 {
		q = q.Where("brand_id = ?", f.BrandID)
	}
	if len(f.BrandIDs) > 0 {
		q = q.Where("brand_id IN ?", f.BrandIDs)
	}
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("end_date >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("start_date <= ?", f.DateTo)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Booking
	err := q.
		Preload("Product").
		Preload("Brand").
		Order("start_date DESC").
		Limit(f.Limit).
		Offset(f.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListActiveForProduct feeds the availability calendar: PENDING/CONFIRMED
// bookings ordered by start date.
func (r *BookingRepository) ListActiveForProduct(ctx context.Context, productID int64) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("status IN ?", activeStatuses).
		Order("start_date").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateFields patches the given columns and bumps updated_at.
func (r *BookingRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// CompleteFinished marks CONFIRMED bookings whose end date has passed as
// COMPLETED. Run periodically by cmd/booking_sweeper.
func (r *BookingRepository) CompleteFinished(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("status = ?", domain.BookingConfirmed).
		Where("end_date < ?", now).
		Updates(map[string]any{
			"status":     domain.BookingCompleted,
			"updated_at": now,
		})
	return tx.RowsAffected, tx.Error
}
