package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/homefix-app/service-booking/internal/domain"
)

// envelope is the uniform response body.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errBody    `json:"error,omitempty"`
}

type errBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type paginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	Limit   int         `json:"limit"`
}

// Success writes a 200 with the payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// Created writes a 201 with the payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// Paginated writes a 200 with a page of items and the total count.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, paginatedEnvelope{
		Success: true,
		Data:    items,
		Total:   total,
		Page:    page,
		Limit:   limit,
	})
}

// BadRequest writes a 400 with the message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, envelope{
		Success: false,
		Error:   &errBody{Code: string(domain.CodeValidation), Message: message},
	})
}

// statusFor maps domain error codes to HTTP statuses. Guard failures are
// client errors; only unclassified infrastructure errors become 500s.
func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation, domain.CodeFinalPriceRequired, domain.CodeReasonRequired:
		return http.StatusBadRequest
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict, domain.CodeDuplicateReview:
		return http.StatusConflict
	case domain.CodeInvalidTransition, domain.CodeInvalidBookingState,
		domain.CodeQuoteRequired, domain.CodeQuoteLocked, domain.CodePaymentNotConfirmed:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error writes the appropriate status and body for an error. Domain
// errors keep their code and structured details; anything else is
// reported as an opaque internal error.
func Error(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		c.JSON(statusFor(de.Code), envelope{
			Success: false,
			Error: &errBody{
				Code:    string(de.Code),
				Message: de.Message,
				Details: de.Details,
			},
		})
		return
	}

	c.JSON(http.StatusInternalServerError, envelope{
		Success: false,
		Error:   &errBody{Code: "INTERNAL_ERROR", Message: "internal server error"},
	})
}
