package booking

import (
	"time"

	"rentalhub/internal/domain"
)

// Request fields are validated in the service so that validation errors can
// name the missing fields instead of gin's generic binding message.
type CreateBookingRequest struct {
	ProductID     int64     `json:"productId"`
	StartDate     time.Time `json:"startDate"`
	EndDate       time.Time `json:"endDate"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	CustomerEmail string    `json:"customerEmail"`
	CustomerOrg   string    `json:"customerOrg"`
	Notes         string    `json:"notes"`
}

type UpdateBookingRequest struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"paymentStatus"`
	PaymentMethod *string `json:"paymentMethod"`
	Notes         *string `json:"notes"`
}

type ListBookingsQuery struct {
	ProductID int64
	BrandID   int64
	UserID    int64
	Statuses  []domain.BookingStatus
	DateFrom  time.Time
	DateTo    time.Time
	Limit     int
	Offset    int
}

// PublicBookingView is the sanitized projection used for calendar rendering
// and feed events. It must never carry customer contact fields.
type PublicBookingView struct {
	ID        int64                `json:"id"`
	StartDate time.Time            `json:"startDate"`
	EndDate   time.Time            `json:"endDate"`
	Status    domain.BookingStatus `json:"status"`
	ProductID int64                `json:"productId"`
}

func NewPublicBookingView(b domain.Booking) PublicBookingView {
	return PublicBookingView{
		ID:        b.ID,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Status:    b.Status,
		ProductID: b.ProductID,
	}
}

type ProductSummary struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Price     float64          `json:"price"`
	PriceUnit domain.PriceUnit `json:"priceUnit"`
}

type BrandSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`

	// Bank-transfer reference shown on the confirmation page.
	BankAccount string `json:"bankAccount,omitempty"`
}

type BookingView struct {
	ID            int64                `json:"id"`
	BookingCode   string               `json:"bookingCode"`
	ProductID     int64                `json:"productId"`
	BrandID       int64                `json:"brandId"`
	UserID        *int64               `json:"userId,omitempty"`
	CustomerName  string               `json:"customerName"`
	CustomerPhone string               `json:"customerPhone"`
	CustomerEmail string               `json:"customerEmail,omitempty"`
	CustomerOrg   string               `json:"customerOrg,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	StartDate     time.Time            `json:"startDate"`
	EndDate       time.Time            `json:"endDate"`
	TotalPrice    float64              `json:"totalPrice"`
	Status        domain.BookingStatus `json:"status"`
	PaymentStatus domain.PaymentStatus `json:"paymentStatus"`
	PaymentMethod string               `json:"paymentMethod,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`

	Product *ProductSummary `json:"product,omitempty"`
	Brand   *BrandSummary   `json:"brand,omitempty"`
}

func NewBookingView(b *domain.Booking) BookingView {
	v := BookingView{
		ID:            b.ID,
		BookingCode:   b.BookingCode,
		ProductID:     b.ProductID,
		BrandID:       b.BrandID,
		UserID:        b.UserID,
		CustomerName:  b.CustomerName,
		CustomerPhone: b.CustomerPhone,
		CustomerEmail: b.CustomerEmail,
		CustomerOrg:   b.CustomerOrg,
		Notes:         b.Notes,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		PaymentMethod: b.PaymentMethod,
		CreatedAt:     b.CreatedAt,
	}
	if b.Product != nil {
		v.Product = &ProductSummary{
			ID:        b.Product.ID,
			Name:      b.Product.Name,
			Price:     b.Product.Price,
			PriceUnit: b.Product.PriceUnit,
		}
	}
	if b.Brand != nil {
		v.Brand = &BrandSummary{
			ID:          b.Brand.ID,
			Name:        b.Brand.Name,
			City:        b.Brand.City,
			BankAccount: b.Brand.BankAccount,
		}
	}
	return v
}

// AvailabilityResult is the outcome of a single availability probe.
type AvailabilityResult struct {
	Available bool               `json:"available"`
	Conflict  *PublicBookingView `json:"conflict,omitempty"`
}
