package application

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	quoteDomain "github.com/homefix-app/service-booking/internal/domain/quote"
	"github.com/homefix-app/service-booking/internal/events"
)

// SubmitQuoteRequest carries the technician's commercial terms.
type SubmitQuoteRequest struct {
	Conditions string `json:"conditions" binding:"required"`
	Equipment  string `json:"equipment"`
	PriceCents int64  `json:"price_cents" binding:"required,min=1"`
}

// QuoteDTO is the response representation of a quote.
type QuoteDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Conditions string    `json:"conditions"`
	Equipment  string    `json:"equipment,omitempty"`
	PriceCents int64     `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QuoteService manages the single quote attached to a booking.
type QuoteService struct {
	bookings bookingDomain.BookingRepository
	quotes   quoteDomain.QuoteRepository
	producer EventPublisher
	notifier events.Notifier
	logger   *zap.Logger
}

// NewQuoteService creates a new QuoteService.
func NewQuoteService(
	bookings bookingDomain.BookingRepository,
	quotes quoteDomain.QuoteRepository,
	producer EventPublisher,
	notifier events.Notifier,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		bookings: bookings,
		quotes:   quotes,
		producer: producer,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitQuote creates or revises the quote for a booking. The window is
// open while the booking sits in accepted or on_the_way; once work has
// started the quote is locked. Re-submitting identical terms is a no-op
// from the client's point of view: the row is overwritten in place and
// still counts as one quote.
func (s *QuoteService) SubmitQuote(ctx context.Context, bookingID, technicianID uuid.UUID, req SubmitQuoteRequest) (*QuoteDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(technicianID, bookingDomain.RoleTechnician, bk, bookingDomain.ActionSubmitQuote); err != nil {
		return nil, err
	}

	if !bk.QuoteWindow() {
		switch bk.Status() {
		case bookingDomain.StatusInProgress, bookingDomain.StatusAwaitingPayment, bookingDomain.StatusCompleted:
			return nil, domain.NewQuoteLockedError(bk.Status().String())
		default:
			return nil, domain.NewInvalidStateError("quote can only be submitted after the booking is accepted").
				WithDetail("current_status", bk.Status().String())
		}
	}

	q, err := s.quotes.FindByBookingID(ctx, bookingID)
	switch {
	case err == nil:
		if err := q.Revise(req.Conditions, req.Equipment, req.PriceCents); err != nil {
			return nil, err
		}
	case domain.IsCode(err, domain.CodeNotFound):
		if q, err = quoteDomain.NewQuote(bookingID, req.Conditions, req.Equipment, req.PriceCents); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// The upsert is conditioned on the booking version read above, so a
	// transition that closes the window mid-flight fails the write
	// instead of letting revised terms slip past the freeze.
	if err := s.quotes.Upsert(ctx, q, bk.Version()); err != nil {
		return nil, err
	}

	evt := events.QuoteSubmittedEvent{
		BookingID:    bookingID,
		TechnicianID: technicianID,
		PriceCents:   q.PriceCents(),
		OccurredAt:   time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingQuoteSubmitted, bookingID.String(), evt)
	s.notifier.Notify(ctx, bk.ClientID(), events.BookingQuoteSubmitted, bookingID, map[string]string{
		"price_cents": formatCents(q.PriceCents()),
	})

	result := toQuoteDTO(q)
	return &result, nil
}

// GetQuote retrieves the quote for a booking the actor may read.
func (s *QuoteService) GetQuote(ctx context.Context, bookingID, actorID uuid.UUID, role bookingDomain.ActorRole) (*QuoteDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(actorID, role, bk, bookingDomain.ActionRead); err != nil {
		return nil, err
	}

	q, err := s.quotes.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	result := toQuoteDTO(q)
	return &result, nil
}

func formatCents(cents int64) string {
	return strconv.FormatInt(cents, 10)
}

func toQuoteDTO(q *quoteDomain.Quote) QuoteDTO {
	return QuoteDTO{
		ID:         q.ID(),
		BookingID:  q.BookingID(),
		Conditions: q.Conditions(),
		Equipment:  q.Equipment(),
		PriceCents: q.PriceCents(),
		CreatedAt:  q.CreatedAt(),
		UpdatedAt:  q.UpdatedAt(),
	}
}

func (s *QuoteService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	cloudEvent, err := events.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, events.TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("event_type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
