package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	"github.com/homefix-app/service-booking/internal/events"
)

type paymentFixture struct {
	repo      *fakeBookingRepo
	publisher *fakePublisher
	notifier  *fakeNotifier
	service   *PaymentService
}

func newPaymentFixture() *paymentFixture {
	repo := newFakeBookingRepo()
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	return &paymentFixture{
		repo:      repo,
		publisher: publisher,
		notifier:  notifier,
		service:   NewPaymentService(repo, repo, &fakeAuditLog{repo: repo}, publisher, notifier, zap.NewNop()),
	}
}

func awaitingPaymentBooking(t *testing.T, repo *fakeBookingRepo) *bookingDomain.Booking {
	t.Helper()
	now := time.Now().UTC()
	final := int64(20000)
	bk := bookingDomain.ReconstructBooking(
		uuid.New(), "BK-PAY001", uuid.New(), uuid.New(), uuid.New(),
		"rewire fuse box", "8 Oak Avenue", "Springfield",
		nil, 15000, &final,
		bookingDomain.StatusAwaitingPayment, bookingDomain.PaymentUnpaid,
		nil, "", "", 3, now, now,
	)
	repo.put(bk)
	return bk
}

func TestSubmitPaymentProof(t *testing.T) {
	f := newPaymentFixture()
	bk := awaitingPaymentBooking(t, f.repo)

	dto, err := f.service.SubmitPaymentProof(context.Background(), bk.ID(), bk.ClientID(), SubmitPaymentProofRequest{
		Method:        "transfer",
		ReceiptURL:    "https://cdn.example.com/receipts/abc.jpg",
		TransactionID: "TRX-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "awaiting_payment", dto.Status)
	require.NotNil(t, dto.PaymentMethod)
	assert.Equal(t, "transfer", *dto.PaymentMethod)

	assert.Len(t, f.publisher.eventsOfType(events.BookingPaymentProofSubmitted), 1)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, bk.TechnicianID(), f.notifier.sent[0].RecipientID)
}

func TestSubmitPaymentProof_TechnicianCannot(t *testing.T) {
	f := newPaymentFixture()
	bk := awaitingPaymentBooking(t, f.repo)

	_, err := f.service.SubmitPaymentProof(context.Background(), bk.ID(), bk.TechnicianID(), SubmitPaymentProofRequest{
		Method: "transfer",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}

func TestConfirmPayment_PersistsPaidAndCompletedTogether(t *testing.T) {
	f := newPaymentFixture()
	bk := awaitingPaymentBooking(t, f.repo)

	dto, err := f.service.ConfirmPayment(context.Background(), bk.ID(), bk.TechnicianID())
	require.NoError(t, err)
	assert.Equal(t, "completed", dto.Status)
	assert.Equal(t, "paid", dto.PaymentStatus)

	// The store saw exactly one write carrying both facts.
	stored, err := f.repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, err)
	assert.Equal(t, bookingDomain.StatusCompleted, stored.Status())
	assert.Equal(t, bookingDomain.PaymentPaid, stored.PaymentStatus())
	assert.Equal(t, int64(4), stored.Version())

	assert.Len(t, f.publisher.eventsOfType(events.BookingPaymentConfirmed), 1)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, bk.ClientID(), f.notifier.sent[0].RecipientID)
}

func TestConfirmPayment_FailedWritePublishesNothing(t *testing.T) {
	f := newPaymentFixture()
	bk := awaitingPaymentBooking(t, f.repo)
	f.repo.updateErr = domain.NewConflictError("booking was modified by another transaction")

	_, err := f.service.ConfirmPayment(context.Background(), bk.ID(), bk.TechnicianID())
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
	assert.Empty(t, f.publisher.events)
	assert.Empty(t, f.notifier.sent)

	// Neither half of paid+completed reached the store.
	stored, findErr := f.repo.FindByID(context.Background(), bk.ID())
	require.NoError(t, findErr)
	assert.Equal(t, bookingDomain.StatusAwaitingPayment, stored.Status())
	assert.Equal(t, bookingDomain.PaymentUnpaid, stored.PaymentStatus())
	assert.Equal(t, int64(3), stored.Version())
}

func TestOverridePaymentStatus_WritesAudit(t *testing.T) {
	f := newPaymentFixture()
	bk := awaitingPaymentBooking(t, f.repo)
	adminID := uuid.New()

	dto, err := f.service.OverridePaymentStatus(context.Background(), bk.ID(), adminID, OverridePaymentRequest{
		PaymentStatus: "paid",
		Reason:        "bank transfer confirmed out of band",
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", dto.PaymentStatus)
	assert.Equal(t, "completed", dto.Status, "paid override from awaiting_payment completes the booking")

	audit, err := f.service.GetPaymentAudit(context.Background(), bk.ID())
	require.NoError(t, err)
	require.Len(t, audit, 1)
	assert.Equal(t, adminID, audit[0].AdminID)
	assert.Equal(t, "unpaid", audit[0].OldStatus)
	assert.Equal(t, "paid", audit[0].NewStatus)
	assert.Equal(t, "bank transfer confirmed out of band", audit[0].Reason)

	assert.Len(t, f.publisher.eventsOfType(events.BookingPaymentOverridden), 1)
	// Both parties hear about an admin override.
	assert.Len(t, f.notifier.sent, 2)
}

func TestOverridePaymentStatus_ReasonRequiredForPaid(t *testing.T) {
	f := newPaymentFixture()
	bk := awaitingPaymentBooking(t, f.repo)

	_, err := f.service.OverridePaymentStatus(context.Background(), bk.ID(), uuid.New(), OverridePaymentRequest{
		PaymentStatus: "paid",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeReasonRequired, domain.CodeOf(err))
	assert.Empty(t, f.repo.audits)
}
