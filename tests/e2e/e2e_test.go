package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"rentalhub/internal/database"
	"rentalhub/internal/domain"
	"rentalhub/internal/middleware"
	"rentalhub/internal/modules/auth"
	"rentalhub/internal/modules/booking"
	"rentalhub/internal/modules/catalog"
	"rentalhub/internal/modules/feed"
	jwtsvc "rentalhub/internal/pkg/jwt"
	"rentalhub/internal/repository"
)

type Suite struct {
	router *gin.Engine
	db     *gorm.DB
	jwt    *jwtsvc.Service

	owner    *domain.User
	customer *domain.User
	stranger *domain.User
	admin    *domain.User
	brand    *domain.Brand
	product  *domain.Product
}

type APIResponse struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func setupSuite(t *testing.T) *Suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// file-backed SQLite so the pooled connections share one database
	db, err := database.Connect(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	productRepo := repository.NewProductRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New("e2e-test-secret", time.Hour)
	hub := feed.NewHub()

	authHandler := auth.NewHandler(auth.NewService(userRepo, j))
	catalogHandler := catalog.NewHandler(catalog.NewService(brandRepo, productRepo))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, productRepo, brandRepo, hub))
	feedHandler := feed.NewHandler(hub)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(j))
	{
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterRoutes(v1)
		bookingHandler.RegisterRoutes(v1)
		feedHandler.RegisterRoutes(v1)
	}

	s := &Suite{router: r, db: db, jwt: j}
	s.seed(t)
	return s
}

func (s *Suite) seed(t *testing.T) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	s.owner = &domain.User{Email: "owner@example.com", PasswordHash: string(hash), Role: domain.RoleBrandOwner, Name: "Dana"}
	s.customer = &domain.User{Email: "customer@example.com", PasswordHash: string(hash), Role: domain.RoleCustomer, Name: "Miras"}
	s.stranger = &domain.User{Email: "stranger@example.com", PasswordHash: string(hash), Role: domain.RoleCustomer, Name: "Aliya"}
	s.admin = &domain.User{Email: "admin@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin, Name: "Admin"}
	for _, u := range []*domain.User{s.owner, s.customer, s.stranger, s.admin} {
		require.NoError(t, s.db.Create(u).Error)
	}

	s.brand = &domain.Brand{OwnerID: s.owner.ID, Name: "Aurora Event Spaces", City: "Almaty", IsActive: true}
	require.NoError(t, s.db.Create(s.brand).Error)

	s.product = &domain.Product{
		BrandID:   s.brand.ID,
		Name:      "Grand Hall",
		Price:     100000,
		PriceUnit: domain.UnitDay,
		IsActive:  true,
	}
	require.NoError(t, s.db.Create(s.product).Error)
}

func (s *Suite) token(t *testing.T, u *domain.User) string {
	t.Helper()
	token, err := s.jwt.GenerateToken(u.ID, string(u.Role))
	require.NoError(t, err)
	return token
}

func (s *Suite) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, *APIResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

func (s *Suite) createBookingBody(start, end string) map[string]any {
	return map[string]any{
		"productId":     s.product.ID,
		"startDate":     start,
		"endDate":       end,
		"customerName":  "Miras",
		"customerPhone": "+77010000002",
	}
}

func bookingField(t *testing.T, resp *APIResponse, key string) any {
	t.Helper()
	b, ok := resp.Data["booking"].(map[string]any)
	require.True(t, ok, "response has no booking object")
	return b[key]
}

func TestAuthFlow(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "New Customer",
		"email":    "new@example.com",
		"password": "secret12",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data["token"])

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Dup",
		"email":    "new@example.com",
		"password": "secret12",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "EMAIL_TAKEN", resp.Error.Code)

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "new@example.com",
		"password": "secret12",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := resp.Data["token"].(string)
	require.NotEmpty(t, token)

	w, resp = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user, ok := resp.Data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "new@example.com", user["email"])
	assert.Equal(t, "customer", user["role"])

	w, resp = s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email":    "new@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestBookingLifecycle(t *testing.T) {
	s := setupSuite(t)

	// guest creates a booking
	w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", "",
		s.createBookingBody("2026-06-10T00:00:00Z", "2026-06-12T00:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)

	code, _ := bookingField(t, resp, "bookingCode").(string)
	assert.Regexp(t, `^BK\d{4}[A-Z0-9]{6}$`, code)
	assert.Equal(t, float64(300000), bookingField(t, resp, "totalPrice")) // 3 inclusive days
	assert.Equal(t, "PENDING", bookingField(t, resp, "status"))
	assert.Nil(t, bookingField(t, resp, "userId"))
	bookingID := int64(bookingField(t, resp, "id").(float64))

	// overlapping range, boundary touching, is rejected
	w, resp = s.do(t, http.MethodPost, "/api/v1/bookings", "",
		s.createBookingBody("2026-06-12T00:00:00Z", "2026-06-14T00:00:00Z"))
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)

	// availability probe reports the conflict without customer data
	w, resp = s.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/products/%d/availability?startDate=2026-06-11&endDate=2026-06-11", s.product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp.Data["available"])
	conflict, ok := resp.Data["conflict"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, conflict, "customerName")
	assert.NotContains(t, conflict, "customerPhone")

	w, resp = s.do(t, http.MethodGet,
		fmt.Sprintf("/api/v1/products/%d/availability?startDate=2026-07-01&endDate=2026-07-03", s.product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp.Data["available"])

	// public listing is sanitized
	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings?productId=%d", s.product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows, ok := resp.Data["bookings"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.NotContains(t, row, "customerName")
	assert.NotContains(t, row, "bookingCode")
	assert.NotContains(t, row, "totalPrice")

	// code lookup is open to anonymous callers
	w, resp = s.do(t, http.MethodGet, "/api/v1/bookings/"+code, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, code, bookingField(t, resp, "bookingCode"))

	// id lookup is not
	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// nor is it open to unrelated customers
	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), s.token(t, s.stranger), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	// a stranger cannot confirm either
	w, _ = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d", bookingID), s.token(t, s.stranger),
		map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// the brand owner can
	w, resp = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d", bookingID), s.token(t, s.owner),
		map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", bookingField(t, resp, "status"))

	// skipping states is rejected
	w, resp = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d", bookingID), s.token(t, s.owner),
		map[string]any{"status": "pending"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	// busy intervals expand the confirmed booking per day
	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/busy-intervals", s.product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	intervals, ok := resp.Data["busyIntervals"].([]any)
	require.True(t, ok)
	assert.Len(t, intervals, 3)
	first := intervals[0].(map[string]any)
	assert.Equal(t, "Booked", first["title"])
	assert.Equal(t, true, first["busy"])
}

func TestBookingCancellationFreesSlot(t *testing.T) {
	s := setupSuite(t)
	customerToken := s.token(t, s.customer)

	w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", customerToken,
		s.createBookingBody("2026-08-01T00:00:00Z", "2026-08-03T00:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, bookingField(t, resp, "userId"))
	bookingID := int64(bookingField(t, resp, "id").(float64))

	// anonymous cancellation is rejected
	w, _ = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", bookingID), "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// the booker cancels their own booking
	w, resp = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", bookingID), customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", bookingField(t, resp, "status"))

	// cancelling again is a success no-op
	w, resp = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/bookings/%d", bookingID), customerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", bookingField(t, resp, "status"))

	// the slot is free again
	w, _ = s.do(t, http.MethodPost, "/api/v1/bookings", "",
		s.createBookingBody("2026-08-01T00:00:00Z", "2026-08-03T00:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestConcurrentBookingCreation(t *testing.T) {
	s := setupSuite(t)

	body := s.createBookingBody("2026-09-10T00:00:00Z", "2026-09-12T00:00:00Z")

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, _ := s.do(t, http.MethodPost, "/api/v1/bookings", "", body)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	created, conflicted := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		}
	}
	assert.Equal(t, 1, created, "exactly one of the racing requests may win")
	assert.Equal(t, 1, conflicted)
}

func TestSelfServiceIsCancelOnly(t *testing.T) {
	s := setupSuite(t)
	customerToken := s.token(t, s.customer)

	w, resp := s.do(t, http.MethodPost, "/api/v1/bookings", customerToken,
		s.createBookingBody("2026-10-01T00:00:00Z", "2026-10-02T00:00:00Z"))
	require.Equal(t, http.StatusCreated, w.Code)
	bookingID := int64(bookingField(t, resp, "id").(float64))

	// the booker may not confirm or mark paid
	w, _ = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d", bookingID), customerToken,
		map[string]any{"status": "confirmed"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d", bookingID), customerToken,
		map[string]any{"paymentStatus": "paid"})
	require.Equal(t, http.StatusForbidden, w.Code)

	// but may cancel via PATCH
	w, resp = s.do(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d", bookingID), customerToken,
		map[string]any{"status": "cancelled"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CANCELLED", bookingField(t, resp, "status"))
}

func TestAdminSweep(t *testing.T) {
	s := setupSuite(t)

	// a confirmed booking whose end date has passed
	require.NoError(t, s.db.Create(&domain.Booking{
		BookingCode:   "BK2501OLDONE",
		ProductID:     s.product.ID,
		BrandID:       s.brand.ID,
		CustomerName:  "Miras",
		CustomerPhone: "+77010000002",
		StartDate:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
		Status:        domain.BookingConfirmed,
		PaymentStatus: domain.PaymentPaid,
	}).Error)

	// admin only
	w, _ := s.do(t, http.MethodPost, "/api/v1/admin/bookings/sweep", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(t, http.MethodPost, "/api/v1/admin/bookings/sweep", s.token(t, s.customer), nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.do(t, http.MethodPost, "/api/v1/admin/bookings/sweep", s.token(t, s.admin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp.Data["completed"])

	var b domain.Booking
	require.NoError(t, s.db.Where("booking_code = ?", "BK2501OLDONE").First(&b).Error)
	assert.Equal(t, domain.BookingCompleted, b.Status)
}

func TestCatalogListing(t *testing.T) {
	s := setupSuite(t)

	w, resp := s.do(t, http.MethodGet, "/api/v1/brands", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", s.product.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}
