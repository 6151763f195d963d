package quote

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/domain"
)

// Quote is the technician-authored commercial terms attached to a booking:
// working conditions, equipment to bring, and the quoted price. At most one
// quote exists per booking; re-submission overwrites it in place.
type Quote struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	conditions string
	equipment  string
	priceCents int64
	createdAt  time.Time
	updatedAt  time.Time
}

// NewQuote creates a quote for a booking.
func NewQuote(bookingID uuid.UUID, conditions, equipment string, priceCents int64) (*Quote, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if strings.TrimSpace(conditions) == "" {
		return nil, domain.NewValidationError("quote conditions are required")
	}
	if priceCents <= 0 {
		return nil, domain.NewValidationError("quote price must be positive")
	}

	now := time.Now().UTC()
	return &Quote{
		id:         uuid.New(),
		bookingID:  bookingID,
		conditions: conditions,
		equipment:  equipment,
		priceCents: priceCents,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct rebuilds a Quote from persistence.
func Reconstruct(id, bookingID uuid.UUID, conditions, equipment string, priceCents int64, createdAt, updatedAt time.Time) *Quote {
	return &Quote{
		id:         id,
		bookingID:  bookingID,
		conditions: conditions,
		equipment:  equipment,
		priceCents: priceCents,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// Revise replaces the quote's terms. The caller decides whether the
// booking still allows it.
func (q *Quote) Revise(conditions, equipment string, priceCents int64) error {
	if strings.TrimSpace(conditions) == "" {
		return domain.NewValidationError("quote conditions are required")
	}
	if priceCents <= 0 {
		return domain.NewValidationError("quote price must be positive")
	}
	q.conditions = conditions
	q.equipment = equipment
	q.priceCents = priceCents
	q.updatedAt = time.Now().UTC()
	return nil
}

// Getters.
func (q *Quote) ID() uuid.UUID        { return q.id }
func (q *Quote) BookingID() uuid.UUID { return q.bookingID }
func (q *Quote) Conditions() string   { return q.conditions }
func (q *Quote) Equipment() string    { return q.equipment }
func (q *Quote) PriceCents() int64    { return q.priceCents }
func (q *Quote) CreatedAt() time.Time { return q.createdAt }
func (q *Quote) UpdatedAt() time.Time { return q.updatedAt }
