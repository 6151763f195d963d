package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/response"
)

// PaymentHandler handles HTTP requests for the payment workflow.
type PaymentHandler struct {
	service *application.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes under the booking resource.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	payment := r.Group("/api/v1/bookings/:id/payment")
	payment.Use(authMW)
	{
		payment.POST("/proof", middleware.RequireRole(bookingDomain.RoleClient), h.SubmitProof)
		payment.POST("/confirm", middleware.RequireRole(bookingDomain.RoleTechnician), h.Confirm)
	}
}

// SubmitProof handles POST /api/v1/bookings/:id/payment/proof.
func (h *PaymentHandler) SubmitProof(c *gin.Context) {
	bookingID, userID, _, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req application.SubmitPaymentProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitPaymentProof(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Confirm handles POST /api/v1/bookings/:id/payment/confirm. Confirming
// the payment also completes the booking.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	bookingID, userID, _, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.service.ConfirmPayment(c.Request.Context(), bookingID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
