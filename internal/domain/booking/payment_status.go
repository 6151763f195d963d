package booking

import (
	"fmt"

	"github.com/homefix-app/service-booking/internal/domain"
)

// PaymentStatus tracks the payment sub-protocol independently of the
// booking status. The normal path is linear: unpaid -> pending -> paid.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// IsValid returns true if the payment status is recognized.
func (p PaymentStatus) IsValid() bool {
	return p == PaymentUnpaid || p == PaymentPending || p == PaymentPaid
}

// String returns the string representation of the payment status.
func (p PaymentStatus) String() string {
	return string(p)
}

// ParsePaymentStatus converts a string to a PaymentStatus, returning an
// error if invalid.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid payment status: %s", s))
	}
	return status, nil
}

// PaymentMethod is how the client pays.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

// IsValid returns true if the payment method is recognized.
func (m PaymentMethod) IsValid() bool {
	return m == MethodCash || m == MethodCard || m == MethodTransfer
}

// ParsePaymentMethod converts a string to a PaymentMethod, returning an
// error if invalid.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(s)
	if !method.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", s))
	}
	return method, nil
}
