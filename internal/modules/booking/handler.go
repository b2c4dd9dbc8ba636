package booking

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"rentalhub/internal/domain"
	"rentalhub/internal/middleware"
	"rentalhub/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListBookings)
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.PATCH("/bookings/:id", middleware.RequireAuth(), h.UpdateBooking)
	rg.DELETE("/bookings/:id", middleware.RequireAuth(), h.CancelBooking)

	rg.GET("/products/:id/busy-intervals", h.GetBusyIntervals)
	rg.GET("/products/:id/availability", h.CheckAvailability)

	admin := rg.Group("/admin", middleware.RequireAuth(), middleware.AdminOnly())
	admin.POST("/bookings/sweep", h.SweepFinished)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": NewBookingView(b)})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.GetBooking(c.Request.Context(), c.Param("id"), middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": NewBookingView(b)})
}

func (h *Handler) ListBookings(c *gin.Context) {
	q, err := parseListQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.ListBookings(c.Request.Context(), q, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if res.Public {
		views := make([]PublicBookingView, 0, len(res.Items))
		for _, b := range res.Items {
			views = append(views, NewPublicBookingView(b))
		}
		response.Success(c, http.StatusOK, gin.H{"bookings": views, "total": res.Total})
		return
	}

	views := make([]BookingView, 0, len(res.Items))
	for i := range res.Items {
		views = append(views, NewBookingView(&res.Items[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": views, "total": res.Total})
}

func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.UpdateBooking(c.Request.Context(), id, req, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": NewBookingView(b)})
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), id, middleware.ActorFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": NewBookingView(b)})
}

func (h *Handler) GetBusyIntervals(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	intervals, err := h.service.BusyIntervals(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"busyIntervals": intervals})
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid product id")
		return
	}

	start, err := parseDateParam(c.Query("startDate"))
	if err != nil || start.IsZero() {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "startDate is required")
		return
	}
	end, err := parseDateParam(c.Query("endDate"))
	if err != nil || end.IsZero() {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "endDate is required")
		return
	}

	res, err := h.service.CheckAvailability(c.Request.Context(), productID, start, end, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// SweepFinished is the manual trigger for the completion sweep the
// booking_sweeper binary runs on a schedule.
func (h *Handler) SweepFinished(c *gin.Context) {
	n, err := h.service.SweepFinished(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"completed": n})
}

func parseListQuery(c *gin.Context) (ListBookingsQuery, error) {
	var q ListBookingsQuery

	q.ProductID, _ = strconv.ParseInt(c.Query("productId"), 10, 64)
	q.BrandID, _ = strconv.ParseInt(c.Query("brandId"), 10, 64)
	q.UserID, _ = strconv.ParseInt(c.Query("userId"), 10, 64)
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	q.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	// status accepts comma-separated values, OR semantics
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, ok := domain.ParseBookingStatus(part)
			if !ok {
				return q, errors.New("invalid status filter: " + part)
			}
			q.Statuses = append(q.Statuses, st)
		}
	}

	var err error
	if q.DateFrom, err = parseDateParam(c.Query("startDate")); err != nil {
		return q, errors.New("invalid startDate")
	}
	if q.DateTo, err = parseDateParam(c.Query("endDate")); err != nil {
		return q, errors.New("invalid endDate")
	}
	return q, nil
}

// parseDateParam accepts RFC3339 timestamps or plain dates.
func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Selected dates are not available")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
