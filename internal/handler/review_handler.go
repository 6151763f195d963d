package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/response"
)

// ReviewHandler handles HTTP requests for booking reviews.
type ReviewHandler struct {
	service *application.ReviewService
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *application.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// RegisterRoutes registers review routes under the booking resource.
// Both parties may submit, so no role middleware here; the service
// decides who reviews whom.
func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	reviews := r.Group("/api/v1/bookings/:id/reviews")
	reviews.Use(authMW)
	{
		reviews.POST("", h.SubmitReview)
		reviews.GET("", h.ListReviews)
	}
}

// SubmitReview handles POST /api/v1/bookings/:id/reviews.
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	bookingID, userID, role, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req application.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SubmitReview(c.Request.Context(), bookingID, userID, role, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListReviews handles GET /api/v1/bookings/:id/reviews.
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	bookingID, userID, role, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.service.GetReviews(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
