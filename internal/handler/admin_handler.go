package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/response"
)

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	bookings *application.BookingService
	payments *application.PaymentService
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(bookings *application.BookingService, payments *application.PaymentService) *AdminBookingHandler {
	return &AdminBookingHandler{bookings: bookings, payments: payments}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(bookingDomain.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.POST("/bookings/:id/payment-status", h.OverridePaymentStatus)
		admin.GET("/bookings/:id/payment-audit", h.PaymentAudit)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	bookings, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// OverridePaymentStatus handles POST /api/v1/admin/bookings/:id/payment-status.
func (h *AdminBookingHandler) OverridePaymentStatus(c *gin.Context) {
	bookingID, adminID, _, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req application.OverridePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.payments.OverridePaymentStatus(c.Request.Context(), bookingID, adminID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// PaymentAudit handles GET /api/v1/admin/bookings/:id/payment-audit.
func (h *AdminBookingHandler) PaymentAudit(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	entries, err := h.payments.GetPaymentAudit(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, entries)
}
