package booking

import (
	"fmt"

	"github.com/homefix-app/service-booking/internal/domain"
)

// BookingStatus represents the current state of a booking in its lifecycle.
type BookingStatus string

const (
	StatusPending         BookingStatus = "pending"
	StatusAccepted        BookingStatus = "accepted"
	StatusOnTheWay        BookingStatus = "on_the_way"
	StatusInProgress      BookingStatus = "in_progress"
	StatusAwaitingPayment BookingStatus = "awaiting_payment"
	StatusCompleted       BookingStatus = "completed"
	StatusDeclined        BookingStatus = "declined"
	StatusCancelled       BookingStatus = "cancelled"
)

// guard identifies the side condition attached to a transition edge.
type guard int

const (
	guardNone guard = iota
	// guardQuoteExists: a quote must be on file before work starts.
	guardQuoteExists
	// guardFinalPrice: a positive final price must accompany the request.
	guardFinalPrice
	// guardPaymentNotPaid: reverting out of awaiting_payment is only
	// possible while payment has not been confirmed.
	guardPaymentNotPaid
	// guardPaymentPaid: completion requires a confirmed payment.
	guardPaymentPaid
)

// transitionRule is one edge of the state machine: who may take it and
// under which side condition. Every edge not listed is rejected,
// including same-state no-ops.
type transitionRule struct {
	from  BookingStatus
	to    BookingStatus
	actor ActorRole
	guard guard
}

var transitionTable = []transitionRule{
	{StatusPending, StatusAccepted, RoleTechnician, guardNone},
	{StatusPending, StatusDeclined, RoleTechnician, guardNone},
	{StatusPending, StatusCancelled, RoleClient, guardNone},
	{StatusAccepted, StatusCancelled, RoleClient, guardNone},
	{StatusAccepted, StatusOnTheWay, RoleTechnician, guardNone},
	{StatusOnTheWay, StatusAccepted, RoleTechnician, guardNone},
	{StatusOnTheWay, StatusInProgress, RoleTechnician, guardQuoteExists},
	{StatusInProgress, StatusOnTheWay, RoleTechnician, guardNone},
	{StatusInProgress, StatusAwaitingPayment, RoleTechnician, guardFinalPrice},
	{StatusAwaitingPayment, StatusInProgress, RoleTechnician, guardPaymentNotPaid},
	{StatusAwaitingPayment, StatusCompleted, RoleSystem, guardPaymentPaid},
}

// findRule returns the single rule for the (from, to) edge, if any.
func findRule(from, to BookingStatus) (transitionRule, bool) {
	for _, r := range transitionTable {
		if r.from == from && r.to == to {
			return r, true
		}
	}
	return transitionRule{}, false
}

var allStatuses = []BookingStatus{
	StatusPending,
	StatusAccepted,
	StatusOnTheWay,
	StatusInProgress,
	StatusAwaitingPayment,
	StatusCompleted,
	StatusDeclined,
	StatusCancelled,
}

// AllStatuses returns every recognized booking status.
func AllStatuses() []BookingStatus {
	out := make([]BookingStatus, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsValid returns true if the status is a recognized booking status.
func (s BookingStatus) IsValid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// CanTransitionTo returns true if an edge from this status to the target
// exists in the transition table, ignoring actor and guard.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	_, ok := findRule(s, target)
	return ok
}

// IsTerminal returns true if no further transitions are possible.
func (s BookingStatus) IsTerminal() bool {
	for _, r := range transitionTable {
		if r.from == s {
			return false
		}
	}
	return true
}

// String returns the string representation of the status.
func (s BookingStatus) String() string {
	return string(s)
}

// ParseBookingStatus converts a string to a BookingStatus, returning an
// error if invalid.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", s))
	}
	return status, nil
}
