package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	quoteDomain "github.com/homefix-app/service-booking/internal/domain/quote"
	"github.com/homefix-app/service-booking/internal/events"
)

const eventSource = "service-booking"

// EventPublisher is the slice of the Kafka producer the services use.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event events.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	TechnicianID        uuid.UUID  `json:"technician_id" binding:"required"`
	CategoryID          uuid.UUID  `json:"category_id" binding:"required"`
	Description         string     `json:"description" binding:"required"`
	Address             string     `json:"address" binding:"required"`
	City                string     `json:"city" binding:"required"`
	ScheduledAt         *time.Time `json:"scheduled_at"`
	EstimatedPriceCents int64      `json:"estimated_price_cents" binding:"required,min=1"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                  uuid.UUID  `json:"id"`
	BookingNumber       string     `json:"booking_number"`
	ClientID            uuid.UUID  `json:"client_id"`
	TechnicianID        uuid.UUID  `json:"technician_id"`
	CategoryID          uuid.UUID  `json:"category_id"`
	Description         string     `json:"description"`
	Address             string     `json:"address"`
	City                string     `json:"city"`
	ScheduledAt         *time.Time `json:"scheduled_at,omitempty"`
	EstimatedPriceCents int64      `json:"estimated_price_cents"`
	FinalPriceCents     *int64     `json:"final_price_cents,omitempty"`
	Status              string     `json:"status"`
	PaymentStatus       string     `json:"payment_status"`
	PaymentMethod       *string    `json:"payment_method,omitempty"`
	ReceiptURL          string     `json:"receipt_url,omitempty"`
	TransactionID       string     `json:"transaction_id,omitempty"`
	Version             int64      `json:"version"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// BookingService is the lifecycle engine: every booking status change,
// whatever endpoint it arrives through, funnels into Transition.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	quotes   quoteDomain.QuoteRepository
	producer EventPublisher
	notifier events.Notifier
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	quotes quoteDomain.QuoteRepository,
	producer EventPublisher,
	notifier events.Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		quotes:   quotes,
		producer: producer,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateBooking creates a new pending booking for the given client.
func (s *BookingService) CreateBooking(ctx context.Context, clientID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	bk, err := bookingDomain.NewBooking(
		clientID,
		req.TechnicianID,
		req.CategoryID,
		req.Description,
		req.Address,
		req.City,
		req.ScheduledAt,
		req.EstimatedPriceCents,
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	evt := events.BookingCreatedEvent{
		BookingID:           bk.ID(),
		BookingNumber:       bk.BookingNumber(),
		ClientID:            bk.ClientID(),
		TechnicianID:        bk.TechnicianID(),
		CategoryID:          bk.CategoryID(),
		City:                bk.City(),
		EstimatedPriceCents: bk.EstimatedPriceCents(),
		OccurredAt:          time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingCreated, bk.ID().String(), evt)
	s.notifier.Notify(ctx, bk.TechnicianID(), events.BookingCreated, bk.ID(), map[string]string{
		"city": bk.City(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// Transition validates and applies one status change on behalf of an
// actor. The quote-existence guard is read against the same snapshot the
// transition is validated on; the write is protected by optimistic
// locking, so a concurrent change surfaces as a conflict instead of a
// composite state.
func (s *BookingService) Transition(
	ctx context.Context,
	bookingID uuid.UUID,
	actorID uuid.UUID,
	role bookingDomain.ActorRole,
	to bookingDomain.BookingStatus,
	in bookingDomain.TransitionInput,
) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := bookingDomain.Authorize(actorID, role, bk, bookingDomain.ActionTransition); err != nil {
		return nil, err
	}

	quoteExists := false
	if to == bookingDomain.StatusInProgress {
		quoteExists, err = s.quotes.ExistsForBooking(ctx, bookingID)
		if err != nil {
			return nil, err
		}
	}

	oldStatus := bk.Status()
	if err := bk.Transition(role, to, in, quoteExists); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishStatusChanged(ctx, bk, oldStatus, actorID, role)
	s.notifyCounterParty(ctx, bk, actorID)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking the actor is allowed to read.
func (s *BookingService) GetBooking(ctx context.Context, bookingID, actorID uuid.UUID, role bookingDomain.ActorRole) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(actorID, role, bk, bookingDomain.ActionRead); err != nil {
		return nil, err
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// GetClientBookings retrieves paginated bookings for a specific client.
func (s *BookingService) GetClientBookings(ctx context.Context, clientID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByClientID(ctx, clientID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// GetTechnicianBookings retrieves paginated bookings for a specific technician.
func (s *BookingService) GetTechnicianBookings(ctx context.Context, technicianID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.repo.FindByTechnicianID(ctx, technicianID, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// CancelOpenBookingsForUser withdraws the open bookings of a deactivated
// account, taking only the edges the transition table grants that user's
// position in each booking: a client's pending and accepted bookings are
// cancelled, a technician's pending requests are declined. Bookings with
// work already underway are left for support.
func (s *BookingService) CancelOpenBookingsForUser(ctx context.Context, userID uuid.UUID, reason string) error {
	open, err := s.repo.FindOpenByParticipant(ctx, userID)
	if err != nil {
		return err
	}

	for _, bk := range open {
		var (
			role bookingDomain.ActorRole
			to   bookingDomain.BookingStatus
		)
		switch {
		case bk.ClientID() == userID && bk.Status().CanTransitionTo(bookingDomain.StatusCancelled):
			role, to = bookingDomain.RoleClient, bookingDomain.StatusCancelled
		case bk.TechnicianID() == userID && bk.Status() == bookingDomain.StatusPending:
			role, to = bookingDomain.RoleTechnician, bookingDomain.StatusDeclined
		default:
			s.logger.Info("leaving in-flight booking for support",
				zap.String("booking_id", bk.ID().String()),
				zap.String("status", bk.Status().String()),
				zap.String("user_id", userID.String()),
			)
			continue
		}

		if _, err := s.Transition(ctx, bk.ID(), userID, role, to, bookingDomain.TransitionInput{}); err != nil {
			s.logger.Error("failed to withdraw booking for deactivated user",
				zap.String("booking_id", bk.ID().String()),
				zap.String("reason", reason),
				zap.Error(err),
			)
		}
	}
	return nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	var method *string
	if bk.PaymentMethod() != nil {
		m := string(*bk.PaymentMethod())
		method = &m
	}

	return BookingDTO{
		ID:                  bk.ID(),
		BookingNumber:       bk.BookingNumber(),
		ClientID:            bk.ClientID(),
		TechnicianID:        bk.TechnicianID(),
		CategoryID:          bk.CategoryID(),
		Description:         bk.Description(),
		Address:             bk.Address(),
		City:                bk.City(),
		ScheduledAt:         bk.ScheduledAt(),
		EstimatedPriceCents: bk.EstimatedPriceCents(),
		FinalPriceCents:     bk.FinalPriceCents(),
		Status:              bk.Status().String(),
		PaymentStatus:       bk.PaymentStatus().String(),
		PaymentMethod:       method,
		ReceiptURL:          bk.ReceiptURL(),
		TransactionID:       bk.TransactionID(),
		Version:             bk.Version(),
		CreatedAt:           bk.CreatedAt(),
		UpdatedAt:           bk.UpdatedAt(),
	}
}

func toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos
}

func (s *BookingService) publishStatusChanged(ctx context.Context, bk *bookingDomain.Booking, oldStatus bookingDomain.BookingStatus, actorID uuid.UUID, role bookingDomain.ActorRole) {
	evt := events.BookingStatusChangedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		OldStatus:     oldStatus.String(),
		NewStatus:     bk.Status().String(),
		ChangedBy:     actorID,
		ChangedByRole: role.String(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingStatusChanged, bk.ID().String(), evt)
}

// notifyCounterParty reaches the party that did not initiate the change.
func (s *BookingService) notifyCounterParty(ctx context.Context, bk *bookingDomain.Booking, actorID uuid.UUID) {
	recipient := bk.ClientID()
	if actorID == bk.ClientID() {
		recipient = bk.TechnicianID()
	}
	s.notifier.Notify(ctx, recipient, events.BookingStatusChanged, bk.ID(), map[string]string{
		"status": bk.Status().String(),
	})
}

// publishEvent is fire-and-forget: a publish failure is logged and never
// rolls back the state change it describes.
func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
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
