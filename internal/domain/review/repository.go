package review

import (
	"context"

	"github.com/google/uuid"
)

// ReviewRepository defines persistence operations for reviews. The store
// enforces uniqueness on (bookingID, reviewerID); Save surfaces a
// duplicate as a DuplicateReview domain error so retries never overwrite.
type ReviewRepository interface {
	Save(ctx context.Context, review *Review) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*Review, error)
	ExistsForReviewer(ctx context.Context, bookingID, reviewerID uuid.UUID) (bool, error)
}
