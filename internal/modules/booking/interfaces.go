package booking

import (
	"context"
	"time"

	"rentalhub/internal/domain"
	"rentalhub/internal/repository"
)

// BookingRepository - only the methods the booking service uses
type BookingRepository interface {
	FindConflict(ctx context.Context, productID int64, start, end time.Time, excludeID int64) (*domain.Booking, error)
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCode(ctx context.Context, code string) (*domain.Booking, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, int64, error)
	ListActiveForProduct(ctx context.Context, productID int64) ([]domain.Booking, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	CompleteFinished(ctx context.Context, now time.Time) (int64, error)
}

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type BrandRepository interface {
	GetOwnerID(ctx context.Context, brandID int64) (int64, error)
	ListOwnedBy(ctx context.Context, ownerID int64) ([]int64, error)
}

// EventPublisher pushes sanitized booking events to calendar subscribers.
// Optional: a nil publisher disables the feed.
type EventPublisher interface {
	PublishBookingEvent(productID int64, event string, booking PublicBookingView)
}

const (
	EventBookingCreated       = "booking_created"
	EventBookingStatusChanged = "booking_status_changed"
)
