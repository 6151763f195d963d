package events

import (
	"time"

	"github.com/google/uuid"
)

// Kafka topics.
const (
	TopicBookingEvents        = "booking.events"
	TopicNotificationRequests = "notification.requests"
	TopicUserEvents           = "user.events"
)

// Event types published to booking.events.
const (
	BookingCreated               = "booking.created"
	BookingStatusChanged         = "booking.status_changed"
	BookingQuoteSubmitted        = "booking.quote_submitted"
	BookingPaymentProofSubmitted = "booking.payment_proof_submitted"
	BookingPaymentConfirmed      = "booking.payment_confirmed"
	BookingPaymentOverridden     = "booking.payment_overridden"
	BookingReviewSubmitted       = "booking.review_submitted"
)

// Event types consumed from user.events.
const (
	UserDeactivated = "user.deactivated"
)

// BookingCreatedEvent announces a new booking awaiting the technician.
type BookingCreatedEvent struct {
	BookingID           uuid.UUID `json:"booking_id"`
	BookingNumber       string    `json:"booking_number"`
	ClientID            uuid.UUID `json:"client_id"`
	TechnicianID        uuid.UUID `json:"technician_id"`
	CategoryID          uuid.UUID `json:"category_id"`
	City                string    `json:"city"`
	EstimatedPriceCents int64     `json:"estimated_price_cents"`
	OccurredAt          time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent announces one applied lifecycle transition.
type BookingStatusChangedEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	OldStatus     string    `json:"old_status"`
	NewStatus     string    `json:"new_status"`
	ChangedByRole string    `json:"changed_by_role"`
	ChangedBy     uuid.UUID `json:"changed_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// QuoteSubmittedEvent announces a created or revised quote.
type QuoteSubmittedEvent struct {
	BookingID    uuid.UUID `json:"booking_id"`
	TechnicianID uuid.UUID `json:"technician_id"`
	PriceCents   int64     `json:"price_cents"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PaymentProofSubmittedEvent announces a client payment attempt.
type PaymentProofSubmittedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ClientID   uuid.UUID `json:"client_id"`
	Method     string    `json:"method"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentConfirmedEvent announces a confirmed payment and the completed
// booking it produced.
type PaymentConfirmedEvent struct {
	BookingID       uuid.UUID `json:"booking_id"`
	BookingNumber   string    `json:"booking_number"`
	ClientID        uuid.UUID `json:"client_id"`
	TechnicianID    uuid.UUID `json:"technician_id"`
	FinalPriceCents int64     `json:"final_price_cents"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// PaymentOverriddenEvent announces an administrative payment-status
// override. The full audit record lives in the payment audit log.
type PaymentOverriddenEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	AdminID    uuid.UUID `json:"admin_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReviewSubmittedEvent announces a new review.
type ReviewSubmittedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NotificationRequest asks the notification service to reach a user. The
// engine never waits on delivery.
type NotificationRequest struct {
	RecipientID uuid.UUID         `json:"recipient_id"`
	EventType   string            `json:"event_type"`
	BookingID   uuid.UUID         `json:"booking_id"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// UserDeactivatedEvent arrives on user.events when an account is closed.
type UserDeactivatedEvent struct {
	UserID     uuid.UUID `json:"user_id"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
