package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentAudit records one administrative payment-status override. Every
// override writes exactly one entry, committed together with the booking
// mutation it describes.
type PaymentAudit struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	AdminID   uuid.UUID
	OldStatus PaymentStatus
	NewStatus PaymentStatus
	Reason    string
	CreatedAt time.Time
}

// NewPaymentAudit builds an audit entry for an override about to be applied.
func NewPaymentAudit(bookingID, adminID uuid.UUID, oldStatus, newStatus PaymentStatus, reason string) *PaymentAudit {
	return &PaymentAudit{
		ID:        uuid.New(),
		BookingID: bookingID,
		AdminID:   adminID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// AuditLogRepository reads the payment audit trail.
type AuditLogRepository interface {
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*PaymentAudit, error)
}

// AuditedUpdater persists a booking mutation and its audit entry
// atomically: either both commit or neither does.
type AuditedUpdater interface {
	UpdateWithAudit(ctx context.Context, booking *Booking, entry *PaymentAudit) error
}
