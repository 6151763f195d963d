package application

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	reviewDomain "github.com/homefix-app/service-booking/internal/domain/review"
	"github.com/homefix-app/service-booking/internal/events"
)

// SubmitReviewRequest carries one party's rating of the other.
type SubmitReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReviewDTO is the response representation of a review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	RevieweeID uuid.UUID `json:"reviewee_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ReviewService gates reviews behind the finished-and-paid state.
type ReviewService struct {
	bookings bookingDomain.BookingRepository
	reviews  reviewDomain.ReviewRepository
	producer EventPublisher
	notifier events.Notifier
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	bookings bookingDomain.BookingRepository,
	reviews reviewDomain.ReviewRepository,
	producer EventPublisher,
	notifier events.Notifier,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		bookings: bookings,
		reviews:  reviews,
		producer: producer,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitReview records the actor's review of the other party. Reviews
// open only once the booking is completed with a confirmed payment, and
// each party gets exactly one.
func (s *ReviewService) SubmitReview(ctx context.Context, bookingID, reviewerID uuid.UUID, role bookingDomain.ActorRole, req SubmitReviewRequest) (*ReviewDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(reviewerID, role, bk, bookingDomain.ActionReview); err != nil {
		return nil, err
	}

	if !bk.CanBeReviewed() {
		return nil, domain.NewInvalidStateError("booking can only be reviewed after completion with confirmed payment").
			WithDetail("current_status", bk.Status().String()).
			WithDetail("payment_status", bk.PaymentStatus().String())
	}

	revieweeID := bk.TechnicianID()
	if reviewerID == bk.TechnicianID() {
		revieweeID = bk.ClientID()
	}

	exists, err := s.reviews.ExistsForReviewer(ctx, bookingID, reviewerID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.NewDuplicateReviewError(bookingID.String(), reviewerID.String())
	}

	rv, err := reviewDomain.NewReview(bookingID, reviewerID, revieweeID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}

	// The unique index backs this up: a concurrent duplicate surfaces
	// from Save as the same domain error.
	if err := s.reviews.Save(ctx, rv); err != nil {
		return nil, err
	}

	evt := events.ReviewSubmittedEvent{
		BookingID:  bookingID,
		ReviewerID: reviewerID,
		RevieweeID: revieweeID,
		Rating:     rv.Rating(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingReviewSubmitted, bookingID.String(), evt)
	s.notifier.Notify(ctx, revieweeID, events.BookingReviewSubmitted, bookingID, map[string]string{
		"rating": strconv.Itoa(rv.Rating()),
	})

	result := toReviewDTO(rv)
	return &result, nil
}

// GetReviews lists the reviews of a booking the actor may read.
func (s *ReviewService) GetReviews(ctx context.Context, bookingID, actorID uuid.UUID, role bookingDomain.ActorRole) ([]ReviewDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(actorID, role, bk, bookingDomain.ActionRead); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]ReviewDTO, len(reviews))
	for i, rv := range reviews {
		dtos[i] = toReviewDTO(rv)
	}
	return dtos, nil
}

func toReviewDTO(rv *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:         rv.ID(),
		BookingID:  rv.BookingID(),
		ReviewerID: rv.ReviewerID(),
		RevieweeID: rv.RevieweeID(),
		Rating:     rv.Rating(),
		Comment:    rv.Comment(),
		CreatedAt:  rv.CreatedAt(),
	}
}

func (s *ReviewService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
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
