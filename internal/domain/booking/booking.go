package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for a service request linking one client,
// one technician and one category. All status and payment mutations go
// through its behavior methods so the lifecycle invariants hold:
//
//   - finalPrice is set if and only if status is awaiting_payment or completed
//   - paymentStatus=paid implies status=completed
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	clientID      uuid.UUID
	technicianID  uuid.UUID
	categoryID    uuid.UUID

	description string
	address     string
	city        string
	scheduledAt *time.Time

	estimatedPriceCents int64
	finalPriceCents     *int64

	status        BookingStatus
	paymentStatus PaymentStatus
	paymentMethod *PaymentMethod
	receiptURL    string
	transactionID string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// TransitionInput carries the optional payload of a transition request.
// Only the in_progress -> awaiting_payment edge consumes it.
type TransitionInput struct {
	FinalPriceCents *int64
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking with status=pending and an unpaid
// payment record. The technician is assigned at creation time.
func NewBooking(
	clientID uuid.UUID,
	technicianID uuid.UUID,
	categoryID uuid.UUID,
	description string,
	address string,
	city string,
	scheduledAt *time.Time,
	estimatedPriceCents int64,
) (*Booking, error) {
	if clientID == uuid.Nil {
		return nil, domain.NewValidationError("client ID is required")
	}
	if technicianID == uuid.Nil {
		return nil, domain.NewValidationError("technician ID is required")
	}
	if categoryID == uuid.Nil {
		return nil, domain.NewValidationError("category ID is required")
	}
	if clientID == technicianID {
		return nil, domain.NewValidationError("client and technician must be different users")
	}
	if strings.TrimSpace(description) == "" {
		return nil, domain.NewValidationError("description is required")
	}
	if strings.TrimSpace(address) == "" {
		return nil, domain.NewValidationError("address is required")
	}
	if strings.TrimSpace(city) == "" {
		return nil, domain.NewValidationError("city is required")
	}
	if estimatedPriceCents <= 0 {
		return nil, domain.NewValidationError("estimated price must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:                  uuid.New(),
		bookingNumber:       bookingNumber,
		clientID:            clientID,
		technicianID:        technicianID,
		categoryID:          categoryID,
		description:         description,
		address:             address,
		city:                city,
		scheduledAt:         scheduledAt,
		estimatedPriceCents: estimatedPriceCents,
		status:              StatusPending,
		paymentStatus:       PaymentUnpaid,
		version:             1,
		createdAt:           now,
		updatedAt:           now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingNumber string,
	clientID uuid.UUID,
	technicianID uuid.UUID,
	categoryID uuid.UUID,
	description string,
	address string,
	city string,
	scheduledAt *time.Time,
	estimatedPriceCents int64,
	finalPriceCents *int64,
	status BookingStatus,
	paymentStatus PaymentStatus,
	paymentMethod *PaymentMethod,
	receiptURL string,
	transactionID string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                  id,
		bookingNumber:       bookingNumber,
		clientID:            clientID,
		technicianID:        technicianID,
		categoryID:          categoryID,
		description:         description,
		address:             address,
		city:                city,
		scheduledAt:         scheduledAt,
		estimatedPriceCents: estimatedPriceCents,
		finalPriceCents:     finalPriceCents,
		status:              status,
		paymentStatus:       paymentStatus,
		paymentMethod:       paymentMethod,
		receiptURL:          receiptURL,
		transactionID:       transactionID,
		version:             version,
		createdAt:           createdAt,
		updatedAt:           updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// ClientID returns the requesting client's user ID.
func (b *Booking) ClientID() uuid.UUID { return b.clientID }

// TechnicianID returns the assigned technician's user ID.
func (b *Booking) TechnicianID() uuid.UUID { return b.technicianID }

// CategoryID returns the service category.
func (b *Booking) CategoryID() uuid.UUID { return b.categoryID }

// Description returns the problem description.
func (b *Booking) Description() string { return b.description }

// Address returns the service address.
func (b *Booking) Address() string { return b.address }

// City returns the service city.
func (b *Booking) City() string { return b.city }

// ScheduledAt returns the requested time, or nil if unscheduled.
func (b *Booking) ScheduledAt() *time.Time { return b.scheduledAt }

// EstimatedPriceCents returns the estimate set at creation. Immutable.
func (b *Booking) EstimatedPriceCents() int64 { return b.estimatedPriceCents }

// FinalPriceCents returns the final price in cents, or nil before the
// technician requests payment.
func (b *Booking) FinalPriceCents() *int64 { return b.finalPriceCents }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// PaymentMethod returns how the client paid, or nil before payment.
func (b *Booking) PaymentMethod() *PaymentMethod { return b.paymentMethod }

// ReceiptURL returns the client-submitted proof of payment URL.
func (b *Booking) ReceiptURL() string { return b.receiptURL }

// TransactionID returns the client-submitted transaction reference.
func (b *Booking) TransactionID() string { return b.transactionID }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Lifecycle engine ---

// Transition validates and applies one status change for the given role.
// Every edge outside the transition table is rejected; guard violations
// return their specific typed error and leave the booking unchanged.
// quoteExists is supplied by the caller from the quote store.
func (b *Booking) Transition(role ActorRole, to BookingStatus, in TransitionInput, quoteExists bool) error {
	if !to.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", to))
	}

	rule, ok := findRule(b.status, to)
	if !ok {
		return domain.NewInvalidTransitionError(b.status.String(), to.String()).
			WithDetail("actor_role", role.String())
	}

	if rule.actor != role {
		return domain.NewForbiddenError(
			fmt.Sprintf("role %s may not transition a booking from %s to %s", role, b.status, to)).
			WithDetail("current_status", b.status.String()).
			WithDetail("requested_status", to.String()).
			WithDetail("actor_role", role.String())
	}

	switch rule.guard {
	case guardQuoteExists:
		if !quoteExists {
			return domain.NewQuoteRequiredError().
				WithDetail("current_status", b.status.String())
		}
	case guardFinalPrice:
		if in.FinalPriceCents == nil || *in.FinalPriceCents <= 0 {
			return domain.NewFinalPriceRequiredError()
		}
	case guardPaymentNotPaid:
		if b.paymentStatus == PaymentPaid {
			return domain.NewInvalidStateError("cannot revert a booking whose payment is confirmed").
				WithDetail("payment_status", b.paymentStatus.String())
		}
	case guardPaymentPaid:
		if b.paymentStatus != PaymentPaid {
			return domain.NewPaymentNotConfirmedError(b.paymentStatus.String())
		}
	}

	b.applyTransition(rule, in)
	return nil
}

// applyTransition mutates the aggregate for an already-validated rule.
func (b *Booking) applyTransition(rule transitionRule, in TransitionInput) {
	switch {
	case rule.guard == guardFinalPrice:
		// Entering awaiting_payment sets the final price and resets the
		// payment record so a corrected price starts a fresh attempt.
		price := *in.FinalPriceCents
		b.finalPriceCents = &price
		b.resetPayment()
	case rule.guard == guardPaymentNotPaid:
		// Reverting to in_progress withdraws the payment request entirely.
		b.finalPriceCents = nil
		b.resetPayment()
	}

	b.status = rule.to
	b.updatedAt = time.Now().UTC()
}

func (b *Booking) resetPayment() {
	b.paymentStatus = PaymentUnpaid
	b.paymentMethod = nil
	b.receiptURL = ""
	b.transactionID = ""
}

// --- Payment confirmation workflow ---

// SubmitPaymentProof records the client's payment attempt. Allowed only
// while the booking awaits payment and no attempt is in flight.
func (b *Booking) SubmitPaymentProof(method PaymentMethod, receiptURL, transactionID string) error {
	if !method.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", method))
	}
	if b.status != StatusAwaitingPayment {
		return domain.NewInvalidStateError("payment proof can only be submitted while the booking awaits payment").
			WithDetail("current_status", b.status.String())
	}
	if b.paymentStatus != PaymentUnpaid {
		return domain.NewInvalidStateError("a payment attempt has already been recorded").
			WithDetail("payment_status", b.paymentStatus.String())
	}

	b.paymentStatus = PaymentPending
	b.paymentMethod = &method
	b.receiptURL = receiptURL
	b.transactionID = transactionID
	b.updatedAt = time.Now().UTC()
	return nil
}

// ConfirmPayment marks the payment as received and drives the booking to
// completed in the same mutation, so the two can only be persisted
// together. The unpaid path covers cash handed over and confirmed in
// person without a prior proof submission.
func (b *Booking) ConfirmPayment() error {
	if b.status != StatusAwaitingPayment {
		return domain.NewInvalidStateError("payment can only be confirmed while the booking awaits payment").
			WithDetail("current_status", b.status.String())
	}
	if b.paymentStatus == PaymentPaid {
		return domain.NewInvalidStateError("payment is already confirmed").
			WithDetail("payment_status", b.paymentStatus.String())
	}

	if b.paymentStatus == PaymentUnpaid && b.paymentMethod == nil {
		cash := MethodCash
		b.paymentMethod = &cash
	}
	b.paymentStatus = PaymentPaid
	if err := b.Transition(RoleSystem, StatusCompleted, TransitionInput{}, false); err != nil {
		// Unreachable from awaiting_payment with paymentStatus=paid, but
		// never leave the aggregate paid-but-not-completed.
		b.paymentStatus = PaymentPending
		return err
	}
	return nil
}

// OverridePaymentStatus is the administrative escape hatch for support
// and dispute resolution. Moving to paid requires a non-empty reason and
// is refused where it would break the paid-implies-completed invariant;
// from awaiting_payment it drives the completion transition itself.
func (b *Booking) OverridePaymentStatus(newStatus PaymentStatus, reason string) error {
	if !newStatus.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid payment status: %s", newStatus))
	}

	if newStatus == PaymentPaid {
		if strings.TrimSpace(reason) == "" {
			return domain.NewReasonRequiredError()
		}
		switch b.status {
		case StatusCompleted:
			b.paymentStatus = PaymentPaid
		case StatusAwaitingPayment:
			b.paymentStatus = PaymentPaid
			if err := b.Transition(RoleSystem, StatusCompleted, TransitionInput{}, false); err != nil {
				b.paymentStatus = PaymentUnpaid
				return err
			}
		default:
			return domain.NewInvalidStateError("payment can only be marked paid once a final price exists").
				WithDetail("current_status", b.status.String())
		}
		b.updatedAt = time.Now().UTC()
		return nil
	}

	b.paymentStatus = newStatus
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}

// CanBeReviewed reports whether reviews may be attached: work completed
// and payment confirmed.
func (b *Booking) CanBeReviewed() bool {
	return b.status == StatusCompleted && b.paymentStatus == PaymentPaid
}

// QuoteWindow reports whether a quote may currently be created or
// re-submitted: only between acceptance and the start of work.
func (b *Booking) QuoteWindow() bool {
	return b.status == StatusAccepted || b.status == StatusOnTheWay
}
