package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/response"
)

// BookingHandler handles HTTP requests for the booking lifecycle.
type BookingHandler struct {
	service *application.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking lifecycle routes. Each transition
// endpoint is named after its target status; the lifecycle engine works
// out which edge applies from the booking's current state, so the same
// endpoint serves both the forward step and the matching revert.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(bookingDomain.RoleClient), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/accept", middleware.RequireRole(bookingDomain.RoleTechnician), h.Accept)
		bookings.POST("/:id/decline", middleware.RequireRole(bookingDomain.RoleTechnician), h.Decline)
		bookings.POST("/:id/cancel", middleware.RequireRole(bookingDomain.RoleClient), h.Cancel)
		bookings.POST("/:id/on-the-way", middleware.RequireRole(bookingDomain.RoleTechnician), h.OnTheWay)
		bookings.POST("/:id/start", middleware.RequireRole(bookingDomain.RoleTechnician), h.Start)
		bookings.POST("/:id/request-payment", middleware.RequireRole(bookingDomain.RoleTechnician), h.RequestPayment)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Clients see their own
// bookings, technicians the ones assigned to them.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	role, ok := middleware.GetUserRole(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	switch role {
	case bookingDomain.RoleTechnician:
		res, err := h.service.GetTechnicianBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)

	default:
		res, err := h.service.GetClientBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, res.Items, res.Total, res.Page, res.Limit)
	}
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, userID, role, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Accept handles POST /api/v1/bookings/:id/accept.
func (h *BookingHandler) Accept(c *gin.Context) {
	h.transition(c, bookingDomain.StatusAccepted, bookingDomain.TransitionInput{})
}

// Decline handles POST /api/v1/bookings/:id/decline.
func (h *BookingHandler) Decline(c *gin.Context) {
	h.transition(c, bookingDomain.StatusDeclined, bookingDomain.TransitionInput{})
}

// Cancel handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c *gin.Context) {
	h.transition(c, bookingDomain.StatusCancelled, bookingDomain.TransitionInput{})
}

// OnTheWay handles POST /api/v1/bookings/:id/on-the-way.
func (h *BookingHandler) OnTheWay(c *gin.Context) {
	h.transition(c, bookingDomain.StatusOnTheWay, bookingDomain.TransitionInput{})
}

// Start handles POST /api/v1/bookings/:id/start.
func (h *BookingHandler) Start(c *gin.Context) {
	h.transition(c, bookingDomain.StatusInProgress, bookingDomain.TransitionInput{})
}

// RequestPayment handles POST /api/v1/bookings/:id/request-payment.
func (h *BookingHandler) RequestPayment(c *gin.Context) {
	var body struct {
		FinalPriceCents *int64 `json:"final_price_cents"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.transition(c, bookingDomain.StatusAwaitingPayment, bookingDomain.TransitionInput{
		FinalPriceCents: body.FinalPriceCents,
	})
}

func (h *BookingHandler) transition(c *gin.Context, to bookingDomain.BookingStatus, in bookingDomain.TransitionInput) {
	bookingID, userID, role, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.service.Transition(c.Request.Context(), bookingID, userID, role, to, in)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// requestIdentity extracts the booking ID from the path and the actor
// from the authenticated context, writing the error response itself.
func requestIdentity(c *gin.Context) (bookingID, userID uuid.UUID, role bookingDomain.ActorRole, ok bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return uuid.Nil, uuid.Nil, "", false
	}

	userID, found := middleware.GetUserID(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, "", false
	}

	role, found = middleware.GetUserRole(c)
	if !found {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, "", false
	}

	return bookingID, userID, role, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}
