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

type quoteFixture struct {
	repo      *fakeBookingRepo
	quotes    *fakeQuoteRepo
	publisher *fakePublisher
	notifier  *fakeNotifier
	service   *QuoteService
}

func newQuoteFixture() *quoteFixture {
	repo := newFakeBookingRepo()
	quotes := newFakeQuoteRepo(repo)
	publisher := &fakePublisher{}
	notifier := &fakeNotifier{}
	return &quoteFixture{
		repo:      repo,
		quotes:    quotes,
		publisher: publisher,
		notifier:  notifier,
		service:   NewQuoteService(repo, quotes, publisher, notifier, zap.NewNop()),
	}
}

func quoteBooking(t *testing.T, repo *fakeBookingRepo, status bookingDomain.BookingStatus) *bookingDomain.Booking {
	t.Helper()
	now := time.Now().UTC()
	bk := bookingDomain.ReconstructBooking(
		uuid.New(), "BK-QUO001", uuid.New(), uuid.New(), uuid.New(),
		"repaint living room", "3 Pine Road", "Springfield",
		nil, 40000, nil,
		status, bookingDomain.PaymentUnpaid,
		nil, "", "", 1, now, now,
	)
	repo.put(bk)
	return bk
}

func TestSubmitQuote_WindowOpen(t *testing.T) {
	f := newQuoteFixture()
	for _, status := range []bookingDomain.BookingStatus{bookingDomain.StatusAccepted, bookingDomain.StatusOnTheWay} {
		t.Run(status.String(), func(t *testing.T) {
			bk := quoteBooking(t, f.repo, status)

			dto, err := f.service.SubmitQuote(context.Background(), bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
				Conditions: "wall plaster needs patching first",
				Equipment:  "rollers, two coats of paint",
				PriceCents: 45000,
			})
			require.NoError(t, err)
			assert.Equal(t, bk.ID(), dto.BookingID)
			assert.Equal(t, int64(45000), dto.PriceCents)
		})
	}
}

func TestSubmitQuote_RevisionOverwritesInPlace(t *testing.T) {
	f := newQuoteFixture()
	bk := quoteBooking(t, f.repo, bookingDomain.StatusAccepted)
	ctx := context.Background()

	first, err := f.service.SubmitQuote(ctx, bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
		Conditions: "initial assessment",
		PriceCents: 45000,
	})
	require.NoError(t, err)

	second, err := f.service.SubmitQuote(ctx, bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
		Conditions: "ceiling included after all",
		PriceCents: 52000,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "revision keeps the quote row, not a new one")
	assert.Equal(t, first.BookingID, second.BookingID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, int64(52000), second.PriceCents)

	stored, err := f.quotes.FindByBookingID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, "ceiling included after all", stored.Conditions())

	assert.Len(t, f.publisher.eventsOfType(events.BookingQuoteSubmitted), 2)
}

// A transition that closes the quote window can commit between the
// window check and the quote write. The version-conditioned upsert
// refuses the stale write instead of revising terms after the freeze.
func TestSubmitQuote_ConcurrentStartOfWorkIsDetected(t *testing.T) {
	f := newQuoteFixture()
	bk := quoteBooking(t, f.repo, bookingDomain.StatusOnTheWay)
	ctx := context.Background()

	_, err := f.service.SubmitQuote(ctx, bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
		Conditions: "initial terms",
		PriceCents: 45000,
	})
	require.NoError(t, err)

	// Interleave the start-work transition between the revision's window
	// check and its write; the quote on file satisfies its guard.
	bookings := NewBookingService(f.repo, f.quotes, f.publisher, f.notifier, zap.NewNop())
	f.quotes.beforeUpsert = func() {
		f.quotes.beforeUpsert = nil
		_, terr := bookings.Transition(ctx, bk.ID(), bk.TechnicianID(),
			bookingDomain.RoleTechnician, bookingDomain.StatusInProgress, bookingDomain.TransitionInput{})
		require.NoError(t, terr)
	}

	_, err = f.service.SubmitQuote(ctx, bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
		Conditions: "revised after the fact",
		PriceCents: 99000,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))

	stored, err := f.quotes.FindByBookingID(ctx, bk.ID())
	require.NoError(t, err)
	assert.Equal(t, "initial terms", stored.Conditions())
	assert.Equal(t, int64(45000), stored.PriceCents())
}

func TestSubmitQuote_LockedOnceWorkStarted(t *testing.T) {
	f := newQuoteFixture()
	for _, status := range []bookingDomain.BookingStatus{
		bookingDomain.StatusInProgress,
		bookingDomain.StatusAwaitingPayment,
		bookingDomain.StatusCompleted,
	} {
		t.Run(status.String(), func(t *testing.T) {
			bk := quoteBooking(t, f.repo, status)

			_, err := f.service.SubmitQuote(context.Background(), bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
				Conditions: "too late",
				PriceCents: 99000,
			})
			require.Error(t, err)
			assert.Equal(t, domain.CodeQuoteLocked, domain.CodeOf(err))
		})
	}
}

func TestSubmitQuote_TooEarly(t *testing.T) {
	f := newQuoteFixture()
	bk := quoteBooking(t, f.repo, bookingDomain.StatusPending)

	_, err := f.service.SubmitQuote(context.Background(), bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
		Conditions: "jumping the gun",
		PriceCents: 45000,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidBookingState, domain.CodeOf(err))
}

func TestSubmitQuote_OnlyAssignedTechnician(t *testing.T) {
	f := newQuoteFixture()
	bk := quoteBooking(t, f.repo, bookingDomain.StatusAccepted)

	_, err := f.service.SubmitQuote(context.Background(), bk.ID(), uuid.New(), SubmitQuoteRequest{
		Conditions: "not my job",
		PriceCents: 45000,
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}

func TestGetQuote(t *testing.T) {
	f := newQuoteFixture()
	bk := quoteBooking(t, f.repo, bookingDomain.StatusAccepted)
	ctx := context.Background()

	_, err := f.service.GetQuote(ctx, bk.ID(), bk.ClientID(), bookingDomain.RoleClient)
	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	_, err = f.service.SubmitQuote(ctx, bk.ID(), bk.TechnicianID(), SubmitQuoteRequest{
		Conditions: "standard job",
		PriceCents: 45000,
	})
	require.NoError(t, err)

	dto, err := f.service.GetQuote(ctx, bk.ID(), bk.ClientID(), bookingDomain.RoleClient)
	require.NoError(t, err)
	assert.Equal(t, "standard job", dto.Conditions)

	_, err = f.service.GetQuote(ctx, bk.ID(), uuid.New(), bookingDomain.RoleClient)
	require.Error(t, err)
	assert.Equal(t, domain.CodeForbidden, domain.CodeOf(err))
}
