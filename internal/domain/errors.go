package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error so callers can react without string
// matching. Infrastructure failures are never wrapped in a domain Error;
// they propagate as plain errors.
type ErrorCode string

const (
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeConflict            ErrorCode = "CONFLICT"
	CodeForbidden           ErrorCode = "FORBIDDEN"
	CodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	CodeInvalidBookingState ErrorCode = "INVALID_BOOKING_STATE"
	CodeQuoteRequired       ErrorCode = "QUOTE_REQUIRED"
	CodeQuoteLocked         ErrorCode = "QUOTE_LOCKED"
	CodeFinalPriceRequired  ErrorCode = "FINAL_PRICE_REQUIRED"
	CodePaymentNotConfirmed ErrorCode = "PAYMENT_NOT_CONFIRMED"
	CodeDuplicateReview     ErrorCode = "DUPLICATE_REVIEW"
	CodeReasonRequired      ErrorCode = "REASON_REQUIRED"
)

// Error is a typed, recoverable domain error. Details carries structured
// context (current status, requested status, actor role) so the API layer
// can render a precise message.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail attaches a context key/value and returns the same error.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the domain error code, or "" for non-domain errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewValidationError reports malformed input.
func NewValidationError(message string) *Error {
	return newError(CodeValidation, message)
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) *Error {
	e := newError(CodeNotFound, fmt.Sprintf("%s not found: %s", entity, id))
	return e.WithDetail("entity", entity).WithDetail("id", id)
}

// NewConflictError reports a concurrent-modification conflict.
func NewConflictError(message string) *Error {
	return newError(CodeConflict, message)
}

// NewForbiddenError reports that the actor may not perform the action.
func NewForbiddenError(message string) *Error {
	return newError(CodeForbidden, message)
}

// NewInvalidTransitionError reports a status change outside the transition
// table, naming both states.
func NewInvalidTransitionError(from, to string) *Error {
	e := newError(CodeInvalidTransition, fmt.Sprintf("cannot transition from %s to %s", from, to))
	return e.WithDetail("current_status", from).WithDetail("requested_status", to)
}

// NewInvalidStateError reports an action whose state precondition is unmet.
func NewInvalidStateError(message string) *Error {
	return newError(CodeInvalidBookingState, message)
}

// NewQuoteRequiredError reports a transition blocked on a missing quote.
func NewQuoteRequiredError() *Error {
	return newError(CodeQuoteRequired, "a quote must be submitted before work can start")
}

// NewQuoteLockedError reports a quote edit after commercial terms froze.
func NewQuoteLockedError(status string) *Error {
	e := newError(CodeQuoteLocked, "quote can no longer be changed once work has started")
	return e.WithDetail("current_status", status)
}

// NewFinalPriceRequiredError reports a completion attempt without a
// positive final price.
func NewFinalPriceRequiredError() *Error {
	return newError(CodeFinalPriceRequired, "a positive final price is required to request payment")
}

// NewPaymentNotConfirmedError reports a completion attempt before payment
// was confirmed.
func NewPaymentNotConfirmedError(paymentStatus string) *Error {
	e := newError(CodePaymentNotConfirmed, "payment has not been confirmed")
	return e.WithDetail("payment_status", paymentStatus)
}

// NewDuplicateReviewError reports a second review by the same reviewer.
func NewDuplicateReviewError(bookingID, reviewerID string) *Error {
	e := newError(CodeDuplicateReview, "this booking has already been reviewed by this user")
	return e.WithDetail("booking_id", bookingID).WithDetail("reviewer_id", reviewerID)
}

// NewReasonRequiredError reports an administrative override missing its
// mandatory justification.
func NewReasonRequiredError() *Error {
	return newError(CodeReasonRequired, "a non-empty reason is required when marking a booking as paid")
}
