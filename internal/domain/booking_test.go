package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{BookingPending, BookingConfirmed, true},
		{BookingPending, BookingCancelled, true},
		{BookingPending, BookingCompleted, false},
		{BookingPending, BookingPending, false},
		{BookingConfirmed, BookingCompleted, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingPending, false},
		{BookingCancelled, BookingPending, false},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingCompleted, BookingConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestPaymentStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PaymentUnpaid.CanTransitionTo(PaymentPaid))
	assert.True(t, PaymentPaid.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentUnpaid.CanTransitionTo(PaymentRefunded))
	assert.False(t, PaymentRefunded.CanTransitionTo(PaymentPaid))
	assert.False(t, PaymentPaid.CanTransitionTo(PaymentUnpaid))
}

func TestParseBookingStatus(t *testing.T) {
	s, ok := ParseBookingStatus("confirmed")
	assert.True(t, ok)
	assert.Equal(t, BookingConfirmed, s)

	s, ok = ParseBookingStatus("  Pending ")
	assert.True(t, ok)
	assert.Equal(t, BookingPending, s)

	_, ok = ParseBookingStatus("rejected")
	assert.False(t, ok)
}

func TestParsePaymentStatus(t *testing.T) {
	s, ok := ParsePaymentStatus("paid")
	assert.True(t, ok)
	assert.Equal(t, PaymentPaid, s)

	_, ok = ParsePaymentStatus("partial")
	assert.False(t, ok)
}

func TestBooking_IsActive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingPending}).IsActive())
	assert.True(t, (&Booking{Status: BookingConfirmed}).IsActive())
	assert.False(t, (&Booking{Status: BookingCancelled}).IsActive())
	assert.False(t, (&Booking{Status: BookingCompleted}).IsActive())
}
