package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/response"
)

// QuoteHandler handles HTTP requests for booking quotes.
type QuoteHandler struct {
	service *application.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(service *application.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// RegisterRoutes registers quote routes under the booking resource.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	quotes := r.Group("/api/v1/bookings/:id/quote")
	quotes.Use(authMW)
	{
		quotes.PUT("", middleware.RequireRole(bookingDomain.RoleTechnician), h.SubmitQuote)
		quotes.GET("", h.GetQuote)
	}
}

// SubmitQuote handles PUT /api/v1/bookings/:id/quote. Creates the quote
// or overwrites the existing one while the window is open.
func (h *QuoteHandler) SubmitQuote(c *gin.Context) {
	bookingID, userID, _, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req application.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitQuote(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetQuote handles GET /api/v1/bookings/:id/quote.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	bookingID, userID, role, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.service.GetQuote(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
