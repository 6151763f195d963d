package photo

import (
	"context"

	"github.com/google/uuid"
)

// PhotoRepository stores the problem photos clients attach to a booking.
// Photos are write-once and always read as the full set for a booking.
type PhotoRepository interface {
	Save(ctx context.Context, photo *BookingPhoto) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*BookingPhoto, error)
}
