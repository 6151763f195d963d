package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/events"
)

// SubmitPaymentProofRequest carries the client's proof of payment.
type SubmitPaymentProofRequest struct {
	Method        string `json:"method" binding:"required"`
	ReceiptURL    string `json:"receipt_url"`
	TransactionID string `json:"transaction_id"`
}

// OverridePaymentRequest is the admin correction payload.
type OverridePaymentRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
	Reason        string `json:"reason"`
}

// PaymentAuditDTO is the response representation of one audit entry.
type PaymentAuditDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	AdminID   uuid.UUID `json:"admin_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentService handles the payment confirmation workflow: client proof,
// technician confirmation, and audited admin overrides.
type PaymentService struct {
	repo     bookingDomain.BookingRepository
	audited  bookingDomain.AuditedUpdater
	auditLog bookingDomain.AuditLogRepository
	producer EventPublisher
	notifier events.Notifier
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	repo bookingDomain.BookingRepository,
	audited bookingDomain.AuditedUpdater,
	auditLog bookingDomain.AuditLogRepository,
	producer EventPublisher,
	notifier events.Notifier,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		repo:     repo,
		audited:  audited,
		auditLog: auditLog,
		producer: producer,
		notifier: notifier,
		logger:   logger,
	}
}

// SubmitPaymentProof records the client's payment claim and moves the
// payment record to pending. The booking status is untouched.
func (s *PaymentService) SubmitPaymentProof(ctx context.Context, bookingID, clientID uuid.UUID, req SubmitPaymentProofRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(clientID, bookingDomain.RoleClient, bk, bookingDomain.ActionSubmitPaymentProof); err != nil {
		return nil, err
	}

	method, err := bookingDomain.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}

	if err := bk.SubmitPaymentProof(method, req.ReceiptURL, req.TransactionID); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.PaymentProofSubmittedEvent{
		BookingID:  bk.ID(),
		ClientID:   bk.ClientID(),
		Method:     string(method),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingPaymentProofSubmitted, bk.ID().String(), evt)
	s.notifier.Notify(ctx, bk.TechnicianID(), events.BookingPaymentProofSubmitted, bk.ID(), map[string]string{
		"method": string(method),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmPayment marks the payment as received and completes the
// booking. Both mutations ride the same aggregate write, so the row
// either carries paid+completed or neither.
func (s *PaymentService) ConfirmPayment(ctx context.Context, bookingID, technicianID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(technicianID, bookingDomain.RoleTechnician, bk, bookingDomain.ActionConfirmPayment); err != nil {
		return nil, err
	}

	if err := bk.ConfirmPayment(); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	var finalPrice int64
	if bk.FinalPriceCents() != nil {
		finalPrice = *bk.FinalPriceCents()
	}
	evt := events.PaymentConfirmedEvent{
		BookingID:       bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		ClientID:        bk.ClientID(),
		TechnicianID:    bk.TechnicianID(),
		FinalPriceCents: finalPrice,
		OccurredAt:      time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingPaymentConfirmed, bk.ID().String(), evt)
	s.notifier.Notify(ctx, bk.ClientID(), events.BookingPaymentConfirmed, bk.ID(), map[string]string{
		"status": bk.Status().String(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// OverridePaymentStatus lets a platform admin correct a payment record.
// The change and its reason land in the audit log inside the same
// transaction as the booking update.
func (s *PaymentService) OverridePaymentStatus(ctx context.Context, bookingID, adminID uuid.UUID, req OverridePaymentRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(adminID, bookingDomain.RoleAdmin, bk, bookingDomain.ActionOverridePayment); err != nil {
		return nil, err
	}

	newStatus, err := bookingDomain.ParsePaymentStatus(req.PaymentStatus)
	if err != nil {
		return nil, err
	}

	oldStatus := bk.PaymentStatus()
	if err := bk.OverridePaymentStatus(newStatus, req.Reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	entry := bookingDomain.NewPaymentAudit(bk.ID(), adminID, oldStatus, bk.PaymentStatus(), req.Reason)
	if err := s.audited.UpdateWithAudit(ctx, bk, entry); err != nil {
		return nil, err
	}

	evt := events.PaymentOverriddenEvent{
		BookingID:  bk.ID(),
		AdminID:    adminID,
		OldStatus:  oldStatus.String(),
		NewStatus:  bk.PaymentStatus().String(),
		OccurredAt: time.Now().UTC(),
	}
	s.publishEvent(ctx, events.BookingPaymentOverridden, bk.ID().String(), evt)
	s.notifier.Notify(ctx, bk.ClientID(), events.BookingPaymentOverridden, bk.ID(), map[string]string{
		"payment_status": bk.PaymentStatus().String(),
	})
	s.notifier.Notify(ctx, bk.TechnicianID(), events.BookingPaymentOverridden, bk.ID(), map[string]string{
		"payment_status": bk.PaymentStatus().String(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetPaymentAudit returns the override history of a booking (admin).
func (s *PaymentService) GetPaymentAudit(ctx context.Context, bookingID uuid.UUID) ([]PaymentAuditDTO, error) {
	entries, err := s.auditLog.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]PaymentAuditDTO, len(entries))
	for i, e := range entries {
		dtos[i] = PaymentAuditDTO{
			ID:        e.ID,
			BookingID: e.BookingID,
			AdminID:   e.AdminID,
			OldStatus: e.OldStatus.String(),
			NewStatus: e.NewStatus.String(),
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		}
	}
	return dtos, nil
}

func (s *PaymentService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
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
