package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	quoteDomain "github.com/homefix-app/service-booking/internal/domain/quote"
	reviewDomain "github.com/homefix-app/service-booking/internal/domain/review"
	"github.com/homefix-app/service-booking/internal/events"
)

// fakeBookingRepo is an in-memory BookingRepository with optimistic
// locking semantics matching the real store. updateErr, when set, makes
// Update fail, for exercising the no-partial-write paths.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*bookingDomain.Booking
	versions  map[uuid.UUID]int64
	audits    []*bookingDomain.PaymentAudit
	updateErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		versions: make(map[uuid.UUID]int64),
	}
}

// snapshotBooking copies the aggregate so the store never aliases a live
// pointer. A mutated-but-unsaved booking must not be visible on reads.
func snapshotBooking(bk *bookingDomain.Booking) *bookingDomain.Booking {
	var scheduledAt *time.Time
	if s := bk.ScheduledAt(); s != nil {
		v := *s
		scheduledAt = &v
	}
	var finalPrice *int64
	if f := bk.FinalPriceCents(); f != nil {
		v := *f
		finalPrice = &v
	}
	var method *bookingDomain.PaymentMethod
	if m := bk.PaymentMethod(); m != nil {
		v := *m
		method = &v
	}
	return bookingDomain.ReconstructBooking(
		bk.ID(), bk.BookingNumber(), bk.ClientID(), bk.TechnicianID(), bk.CategoryID(),
		bk.Description(), bk.Address(), bk.City(), scheduledAt,
		bk.EstimatedPriceCents(), finalPrice,
		bk.Status(), bk.PaymentStatus(), method,
		bk.ReceiptURL(), bk.TransactionID(),
		bk.Version(), bk.CreatedAt(), bk.UpdatedAt(),
	)
}

func (r *fakeBookingRepo) put(bk *bookingDomain.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[bk.ID()] = snapshotBooking(bk)
	r.versions[bk.ID()] = bk.Version()
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return snapshotBooking(bk), nil
}

func (r *fakeBookingRepo) FindByClientID(_ context.Context, clientID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.ClientID() == clientID {
			out = append(out, snapshotBooking(bk))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindByTechnicianID(_ context.Context, technicianID uuid.UUID, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.TechnicianID() == technicianID {
			out = append(out, snapshotBooking(bk))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindOpenByParticipant(_ context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.Status().IsTerminal() {
			continue
		}
		if bk.ClientID() == userID || bk.TechnicianID() == userID {
			out = append(out, snapshotBooking(bk))
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, _, _ int) ([]*bookingDomain.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, snapshotBooking(bk))
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, bk := range r.bookings {
		counts[bk.Status().String()]++
	}
	return counts, nil
}

func (r *fakeBookingRepo) Save(_ context.Context, bk *bookingDomain.Booking) error {
	r.put(bk)
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.versions[bk.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	if stored != bk.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.bookings[bk.ID()] = snapshotBooking(bk)
	r.versions[bk.ID()] = bk.Version()
	return nil
}

func (r *fakeBookingRepo) UpdateWithAudit(ctx context.Context, bk *bookingDomain.Booking, entry *bookingDomain.PaymentAudit) error {
	if err := r.Update(ctx, bk); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.audits = append(r.audits, entry)
	return nil
}

func (r *fakeBookingRepo) FindAuditByBookingID(_ context.Context, bookingID uuid.UUID) ([]*bookingDomain.PaymentAudit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*bookingDomain.PaymentAudit
	for _, e := range r.audits {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

// fakeAuditLog adapts fakeBookingRepo to the AuditLogRepository read side.
type fakeAuditLog struct {
	repo *fakeBookingRepo
}

func (l *fakeAuditLog) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*bookingDomain.PaymentAudit, error) {
	return l.repo.FindAuditByBookingID(ctx, bookingID)
}

// fakeQuoteRepo is an in-memory QuoteRepository. It checks the booking
// version against the linked booking store the way the real Upsert
// conditions its transaction on the bookings row; beforeUpsert, when
// set, runs between the caller's read and the write to interleave a
// concurrent actor deterministically.
type fakeQuoteRepo struct {
	mu           sync.Mutex
	quotes       map[uuid.UUID]*quoteDomain.Quote
	bookings     *fakeBookingRepo
	beforeUpsert func()
}

func newFakeQuoteRepo(bookings *fakeBookingRepo) *fakeQuoteRepo {
	return &fakeQuoteRepo{
		quotes:   make(map[uuid.UUID]*quoteDomain.Quote),
		bookings: bookings,
	}
}

// snapshotQuote copies a quote so store reads never alias the caller's
// live pointer.
func snapshotQuote(q *quoteDomain.Quote) *quoteDomain.Quote {
	return quoteDomain.Reconstruct(
		q.ID(), q.BookingID(),
		q.Conditions(), q.Equipment(),
		q.PriceCents(),
		q.CreatedAt(), q.UpdatedAt(),
	)
}

func (r *fakeQuoteRepo) Upsert(_ context.Context, q *quoteDomain.Quote, bookingVersion int64) error {
	if r.beforeUpsert != nil {
		r.beforeUpsert()
	}
	r.bookings.mu.Lock()
	stored := r.bookings.versions[q.BookingID()]
	r.bookings.mu.Unlock()
	if stored != bookingVersion {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.BookingID()] = snapshotQuote(q)
	return nil
}

func (r *fakeQuoteRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*quoteDomain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[bookingID]
	if !ok {
		return nil, domain.NewNotFoundError("Quote", bookingID.String())
	}
	return snapshotQuote(q), nil
}

func (r *fakeQuoteRepo) ExistsForBooking(_ context.Context, bookingID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.quotes[bookingID]
	return ok, nil
}

// fakeReviewRepo is an in-memory ReviewRepository enforcing the
// (booking, reviewer) uniqueness the real store gets from its index.
type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews []*reviewDomain.Review
}

func (r *fakeReviewRepo) Save(_ context.Context, rv *reviewDomain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.BookingID() == rv.BookingID() && existing.ReviewerID() == rv.ReviewerID() {
			return domain.NewDuplicateReviewError(rv.BookingID().String(), rv.ReviewerID().String())
		}
	}
	r.reviews = append(r.reviews, rv)
	return nil
}

func (r *fakeReviewRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) ([]*reviewDomain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*reviewDomain.Review
	for _, rv := range r.reviews {
		if rv.BookingID() == bookingID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *fakeReviewRepo) ExistsForReviewer(_ context.Context, bookingID, reviewerID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.BookingID() == bookingID && rv.ReviewerID() == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []events.CloudEvent
	err    error
}

func (p *fakePublisher) PublishEvent(_ context.Context, _, _ string, event events.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventsOfType(eventType string) []events.CloudEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.CloudEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeNotifier records notification requests.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []fakeNotification
}

type fakeNotification struct {
	RecipientID uuid.UUID
	EventType   string
	BookingID   uuid.UUID
}

func (n *fakeNotifier) Notify(_ context.Context, recipientID uuid.UUID, eventType string, bookingID uuid.UUID, _ map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, fakeNotification{RecipientID: recipientID, EventType: eventType, BookingID: bookingID})
}
