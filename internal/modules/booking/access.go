package booking

import (
	"context"

	"rentalhub/internal/domain"
)

// The access gate: who may see or mutate a booking.
//
//   - admin: everything
//   - brand owner: bookings of their own brands
//   - booker: their own bookings; self-service mutation is cancel only
//   - anonymous: lookup by booking code and the sanitized public listing only

func isBooker(actor domain.Actor, b *domain.Booking) bool {
	return !actor.IsAnonymous() && b.UserID != nil && *b.UserID == actor.UserID
}

func (s *Service) isBrandOwner(ctx context.Context, actor domain.Actor, brandID int64) (bool, error) {
	if actor.Role != domain.RoleBrandOwner {
		return false, nil
	}
	ownerID, err := s.brands.GetOwnerID(ctx, brandID)
	if err != nil {
		return false, err
	}
	return ownerID != 0 && ownerID == actor.UserID, nil
}

// canAccessBooking covers reads by internal id and cancellation.
func (s *Service) canAccessBooking(ctx context.Context, actor domain.Actor, b *domain.Booking) (bool, error) {
	if actor.IsAdmin() || isBooker(actor, b) {
		return true, nil
	}
	return s.isBrandOwner(ctx, actor, b.BrandID)
}

// canManageBooking covers status/payment updates: brand owner or admin.
func (s *Service) canManageBooking(ctx context.Context, actor domain.Actor, b *domain.Booking) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	return s.isBrandOwner(ctx, actor, b.BrandID)
}
