package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/homefix-app/service-booking/internal/application"
	"github.com/homefix-app/service-booking/internal/auth"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/middleware"
	"github.com/homefix-app/service-booking/internal/response"
)

// PhotoHandler handles HTTP requests for booking photo operations.
type PhotoHandler struct {
	service *application.PhotoService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(service *application.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: service}
}

// RegisterRoutes registers all photo routes.
func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	photos := r.Group("/api/v1/bookings/:id/photos")
	photos.Use(authMW)
	{
		photos.POST("", middleware.RequireRole(bookingDomain.RoleClient), h.AttachPhoto)
		photos.GET("", h.GetBookingPhotos)
	}
}

// AttachPhoto handles POST /api/v1/bookings/:id/photos.
func (h *PhotoHandler) AttachPhoto(c *gin.Context) {
	bookingID, userID, _, ok := requestIdentity(c)
	if !ok {
		return
	}

	var req application.AttachPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AttachPhoto(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetBookingPhotos handles GET /api/v1/bookings/:id/photos.
func (h *PhotoHandler) GetBookingPhotos(c *gin.Context) {
	bookingID, userID, role, ok := requestIdentity(c)
	if !ok {
		return
	}

	result, err := h.service.GetBookingPhotos(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
