package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/domain"
)

// Review is one party's rating of the other for a finished booking. At
// most one review exists per (booking, reviewer) pair; the two directions
// are independent.
type Review struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	reviewerID uuid.UUID
	revieweeID uuid.UUID
	rating     int
	comment    string
	createdAt  time.Time
}

// NewReview creates a review with a 1-5 integer rating.
func NewReview(bookingID, reviewerID, revieweeID uuid.UUID, rating int, comment string) (*Review, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if reviewerID == uuid.Nil || revieweeID == uuid.Nil {
		return nil, domain.NewValidationError("reviewer and reviewee IDs are required")
	}
	if reviewerID == revieweeID {
		return nil, domain.NewValidationError("a user cannot review themselves")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be an integer between 1 and 5")
	}

	return &Review{
		id:         uuid.New(),
		bookingID:  bookingID,
		reviewerID: reviewerID,
		revieweeID: revieweeID,
		rating:     rating,
		comment:    comment,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Review from persistence.
func Reconstruct(id, bookingID, reviewerID, revieweeID uuid.UUID, rating int, comment string, createdAt time.Time) *Review {
	return &Review{
		id:         id,
		bookingID:  bookingID,
		reviewerID: reviewerID,
		revieweeID: revieweeID,
		rating:     rating,
		comment:    comment,
		createdAt:  createdAt,
	}
}

// Getters.
func (r *Review) ID() uuid.UUID         { return r.id }
func (r *Review) BookingID() uuid.UUID  { return r.bookingID }
func (r *Review) ReviewerID() uuid.UUID { return r.reviewerID }
func (r *Review) RevieweeID() uuid.UUID { return r.revieweeID }
func (r *Review) Rating() int           { return r.rating }
func (r *Review) Comment() string       { return r.comment }
func (r *Review) CreatedAt() time.Time  { return r.createdAt }
