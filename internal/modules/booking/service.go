package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"rentalhub/internal/domain"
	"rentalhub/internal/repository"
)

const maxCodeAttempts = 5

// productLocks hands out one mutex per product id so check-then-insert runs
// exclusively within this process. The database constraint remains the
// guarantee across instances.
type productLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *productLocks) get(productID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	return m
}

type Service struct {
	bookings BookingRepository
	products ProductRepository
	brands   BrandRepository
	events   EventPublisher

	locks productLocks
}

func NewService(
	bookings BookingRepository,
	products ProductRepository,
	brands BrandRepository,
	events EventPublisher,
) *Service {
	return &Service{
		bookings: bookings,
		products: products,
		brands:   brands,
		events:   events,
	}
}

// bookingDays counts calendar days inclusively: a booking starting and
// ending the same day is 1 day. The product price is charged per day
// regardless of PriceUnit, matching the established billing behavior.
func bookingDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}

func missingCreateFields(req CreateBookingRequest) []string {
	var missing []string
	if req.ProductID == 0 {
		missing = append(missing, "productId")
	}
	if req.StartDate.IsZero() {
		missing = append(missing, "startDate")
	}
	if req.EndDate.IsZero() {
		missing = append(missing, "endDate")
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		missing = append(missing, "customerName")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		missing = append(missing, "customerPhone")
	}
	return missing
}

// resolveActiveProduct loads a product and treats missing and deactivated
// ones the same way.
func (s *Service) resolveActiveProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, productID)
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

// CheckAvailability probes a candidate range against active bookings.
// Pure read; boundaries count as conflicts.
func (s *Service) CheckAvailability(ctx context.Context, productID int64, start, end time.Time, excludeID int64) (*AvailabilityResult, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: startDate must not be after endDate", ErrValidation)
	}
	if _, err := s.resolveActiveProduct(ctx, productID); err != nil {
		return nil, err
	}

	conflict, err := s.bookings.FindConflict(ctx, productID, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return &AvailabilityResult{Available: true}, nil
	}
	view := NewPublicBookingView(*conflict)
	return &AvailabilityResult{Available: false, Conflict: &view}, nil
}

func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest, actor domain.Actor) (*domain.Booking, error) {
	if missing := missingCreateFields(req); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: endDate must not be before startDate", ErrValidation)
	}

	product, err := s.resolveActiveProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	days := bookingDays(req.StartDate, req.EndDate)
	total := product.Price * float64(days)

	code, err := s.generateUniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	var userID *int64
	if !actor.IsAnonymous() {
		uid := actor.UserID
		userID = &uid
	}

	b := &domain.Booking{
		BookingCode:   code,
		ProductID:     product.ID,
		BrandID:       product.BrandID,
		UserID:        userID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerOrg:   strings.TrimSpace(req.CustomerOrg),
		Notes:         req.Notes,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TotalPrice:    total,
		Status:        domain.BookingPending,
		PaymentStatus: domain.PaymentUnpaid,
	}

	// Per-product critical section around check+insert. The repository
	// re-checks inside its transaction, so a second instance racing us is
	// still caught at the storage layer.
	mu := s.locks.get(product.ID)
	mu.Lock()
	defer mu.Unlock()

	conflict, err := s.bookings.FindConflict(ctx, product.ID, req.StartDate, req.EndDate, 0)
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, ErrConflict
	}

	for attempt := 0; ; attempt++ {
		err := s.bookings.Create(ctx, b)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrOverlap) {
			return nil, ErrConflict
		}
		// Another request claimed the same code between the ExistsByCode
		// probe and the insert; draw a fresh one and try again.
		if errors.Is(err, repository.ErrDuplicateCode) && attempt < maxCodeAttempts {
			code, cerr := s.generateUniqueCode(ctx)
			if cerr != nil {
				return nil, cerr
			}
			b.BookingCode = code
			continue
		}
		return nil, err
	}

	b.Product = product
	b.Brand = product.Brand
	s.publish(EventBookingCreated, b)
	return b, nil
}

func (s *Service) generateUniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateCode(time.Now())
		if err != nil {
			return "", err
		}
		exists, err := s.bookings.ExistsByCode(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique booking code")
}

// GetBooking resolves the path segment as an internal id when numeric,
// otherwise as a public booking code. Code lookup is open to anonymous
// callers: possessing the code is the authorization.
func (s *Service) GetBooking(ctx context.Context, idOrCode string, actor domain.Actor) (*domain.Booking, error) {
	if id, err := strconv.ParseInt(idOrCode, 10, 64); err == nil {
		return s.getByID(ctx, id, actor)
	}

	b, err := s.bookings.GetByCode(ctx, idOrCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) getByID(ctx context.Context, id int64, actor domain.Actor) (*domain.Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Only admins learn that a booking does not exist; everyone else
		// gets the same answer as for a booking outside their scope.
		if actor.IsAdmin() {
			return nil, ErrNotFound
		}
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.canAccessBooking(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return b, nil
}

type ListResult struct {
	Public bool
	Items  []domain.Booking
	Total  int64
}

// ListBookings applies gate scoping. A productId-only query is the public
// calendar listing and is answered for any caller with sanitized rows; every
// other filter combination requires an identity.
func (s *Service) ListBookings(ctx context.Context, q ListBookingsQuery, actor domain.Actor) (*ListResult, error) {
	f := repository.BookingFilter{
		ProductID: q.ProductID,
		BrandID:   q.BrandID,
		UserID:    q.UserID,
		Statuses:  q.Statuses,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
		Limit:     q.Limit,
		Offset:    q.Offset,
	}

	if q.ProductID > 0 && q.BrandID == 0 && q.UserID == 0 {
		items, total, err := s.bookings.List(ctx, f)
		if err != nil {
			return nil, err
		}
		return &ListResult{Public: true, Items: items, Total: total}, nil
	}

	if actor.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	switch {
	case actor.IsAdmin():
		// unrestricted

	case actor.Role == domain.RoleBrandOwner:
		if q.UserID != 0 && q.UserID != actor.UserID {
			return nil, ErrForbidden
		}
		if q.BrandID > 0 {
			owns, err := s.isBrandOwner(ctx, actor, q.BrandID)
			if err != nil {
				return nil, err
			}
			if !owns {
				return nil, ErrForbidden
			}
		} else if q.UserID == 0 {
			owned, err := s.brands.ListOwnedBy(ctx, actor.UserID)
			if err != nil {
				return nil, err
			}
			if len(owned) == 0 {
				return &ListResult{Items: []domain.Booking{}}, nil
			}
			f.BrandIDs = owned
		}

	default:
		if q.BrandID != 0 {
			return nil, ErrForbidden
		}
		if q.UserID != 0 && q.UserID != actor.UserID {
			return nil, ErrForbidden
		}
		f.UserID = actor.UserID
	}

	items, total, err := s.bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Items: items, Total: total}, nil
}

func (s *Service) UpdateBooking(ctx context.Context, id int64, req UpdateBookingRequest, actor domain.Actor) (*domain.Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if actor.IsAdmin() {
			return nil, ErrNotFound
		}
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	manages, err := s.canManageBooking(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !manages {
		// Self-service is limited to cancelling one's own booking.
		if !isBooker(actor, b) || !isCancelOnly(req) {
			return nil, ErrForbidden
		}
	}

	fields := map[string]any{}

	if req.Status != nil {
		st, ok := domain.ParseBookingStatus(*req.Status)
		if !ok {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *req.Status)
		}
		if st != b.Status {
			if !b.Status.CanTransitionTo(st) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, st)
			}
			fields["status"] = st
		}
	}

	if req.PaymentStatus != nil {
		ps, ok := domain.ParsePaymentStatus(*req.PaymentStatus)
		if !ok {
			return nil, fmt.Errorf("%w: invalid payment status %q", ErrValidation, *req.PaymentStatus)
		}
		if ps != b.PaymentStatus {
			if !b.PaymentStatus.CanTransitionTo(ps) {
				return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.PaymentStatus, ps)
			}
			fields["payment_status"] = ps
		}
	}

	if req.PaymentMethod != nil {
		fields["payment_method"] = *req.PaymentMethod
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}

	if len(fields) == 0 {
		return b, nil
	}

	if err := s.bookings.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, changed := fields["status"]; changed {
		s.publish(EventBookingStatusChanged, updated)
	}
	return updated, nil
}

func isCancelOnly(req UpdateBookingRequest) bool {
	if req.Status == nil || req.PaymentStatus != nil || req.PaymentMethod != nil || req.Notes != nil {
		return false
	}
	st, ok := domain.ParseBookingStatus(*req.Status)
	return ok && st == domain.BookingCancelled
}

// CancelBooking is the DELETE alias: a status transition, never a row
// delete. Cancelling an already cancelled booking is a success no-op.
func (s *Service) CancelBooking(ctx context.Context, id int64, actor domain.Actor) (*domain.Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthorized
	}

	b, err := s.bookings.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if actor.IsAdmin() {
			return nil, ErrNotFound
		}
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.canAccessBooking(ctx, actor, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	if b.Status == domain.BookingCancelled {
		return b, nil
	}
	if b.Status == domain.BookingCompleted {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, domain.BookingCancelled)
	}

	if err := s.bookings.UpdateFields(ctx, id, map[string]any{"status": domain.BookingCancelled}); err != nil {
		return nil, err
	}

	updated, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(EventBookingStatusChanged, updated)
	return updated, nil
}

// SweepFinished marks confirmed bookings whose end date has passed as
// completed. Run on demand by admins and periodically by cmd/booking_sweeper.
func (s *Service) SweepFinished(ctx context.Context, now time.Time) (int64, error) {
	return s.bookings.CompleteFinished(ctx, now)
}

// BusyIntervals projects a product's active bookings into per-day calendar
// intervals.
func (s *Service) BusyIntervals(ctx context.Context, productID int64) ([]BusyInterval, error) {
	if _, err := s.resolveActiveProduct(ctx, productID); err != nil {
		return nil, err
	}
	rows, err := s.bookings.ListActiveForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return ProjectBusyIntervals(rows), nil
}

func (s *Service) publish(event string, b *domain.Booking) {
	if s.events == nil {
		return
	}
	s.events.PublishBookingEvent(b.ProductID, event, NewPublicBookingView(*b))
}
