package quote

import (
	"context"

	"github.com/google/uuid"
)

// QuoteRepository defines persistence operations for quotes. bookingID is
// unique: Upsert overwrites the existing row for the booking, if any.
type QuoteRepository interface {
	// Upsert writes the quote only if the booking row still carries
	// bookingVersion, so a transition committed after the caller read
	// the booking fails the write with a conflict.
	Upsert(ctx context.Context, quote *Quote, bookingVersion int64) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Quote, error)

	// ExistsForBooking is the pure guard predicate consulted by the
	// lifecycle engine before work may start.
	ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error)
}
