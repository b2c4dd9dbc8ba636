package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// ParseBookingStatus normalizes case-insensitive input to a known status.
func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case BookingPending:
		return BookingPending, true
	case BookingConfirmed:
		return BookingConfirmed, true
	case BookingCancelled:
		return BookingCancelled, true
	case BookingCompleted:
		return BookingCompleted, true
	}
	return "", false
}

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case PaymentUnpaid:
		return PaymentUnpaid, true
	case PaymentPaid:
		return PaymentPaid, true
	case PaymentRefunded:
		return PaymentRefunded, true
	}
	return "", false
}

// bookingTransitions is the allowed status graph. COMPLETED and CANCELLED
// are terminal.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Payment moves forward only: UNPAID -> PAID -> REFUNDED.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentUnpaid:
		return next == PaymentPaid
	case PaymentPaid:
		return next == PaymentRefunded
	}
	return false
}

type Booking struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	BookingCode string `json:"bookingCode" gorm:"column:booking_code;size:12;uniqueIndex"`

	ProductID int64  `json:"productId" gorm:"column:product_id;index"`
	BrandID   int64  `json:"brandId" gorm:"column:brand_id;index"`
	UserID    *int64 `json:"userId,omitempty" gorm:"column:user_id;index"`

	// Contact snapshot taken at booking time; guest bookings carry no UserID.
	CustomerName  string `json:"customerName" gorm:"column:customer_name"`
	CustomerPhone string `json:"customerPhone" gorm:"column:customer_phone"`
	CustomerEmail string `json:"customerEmail,omitempty" gorm:"column:customer_email"`
	CustomerOrg   string `json:"customerOrg,omitempty" gorm:"column:customer_org"`
	Notes         string `json:"notes,omitempty" gorm:"type:text"`

	StartDate  time.Time `json:"startDate" gorm:"column:start_date;index"`
	EndDate    time.Time `json:"endDate" gorm:"column:end_date"`
	TotalPrice float64   `json:"totalPrice" gorm:"column:total_price"`

	Status        BookingStatus `json:"status" gorm:"size:16;index"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"column:payment_status;size:16"`
	PaymentMethod string        `json:"paymentMethod,omitempty" gorm:"column:payment_method"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Brand   *Brand   `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
}

func (Booking) TableName() string { return "bookings" }

// IsActive reports whether the booking blocks its date range for other
// candidates. Cancelled and completed bookings free the slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
