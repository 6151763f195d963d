package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingNumber       string     `gorm:"uniqueIndex;not null;size:20"`
	ClientID            uuid.UUID  `gorm:"type:uuid;index;not null"`
	TechnicianID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	CategoryID          uuid.UUID  `gorm:"type:uuid;not null"`
	Description         string     `gorm:"size:2000;not null"`
	Address             string     `gorm:"size:500;not null"`
	City                string     `gorm:"size:100;not null"`
	ScheduledAt         *time.Time `gorm:""`
	EstimatedPriceCents int64      `gorm:"not null"`
	FinalPriceCents     *int64     `gorm:""`
	Status              string     `gorm:"not null;size:30;index"`
	PaymentStatus       string     `gorm:"not null;size:20;default:'unpaid'"`
	PaymentMethod       *string    `gorm:"size:20"`
	ReceiptURL          string     `gorm:"size:500"`
	TransactionID       string     `gorm:"size:100"`
	Version             int64      `gorm:"not null;default:1"`
	CreatedAt           time.Time  `gorm:"not null"`
	UpdatedAt           time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// PaymentAuditModel is the GORM model for the payment audit trail.
type PaymentAuditModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;index;not null"`
	AdminID   uuid.UUID `gorm:"type:uuid;not null"`
	OldStatus string    `gorm:"size:20;not null"`
	NewStatus string    `gorm:"size:20;not null"`
	Reason    string    `gorm:"size:1000"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentAuditModel) TableName() string {
	return "payment_audit_log"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByClientID retrieves bookings for a specific client with pagination.
func (r *GormBookingRepository) FindByClientID(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "client_id = ?", clientID, page, limit)
}

// FindByTechnicianID retrieves bookings for a specific technician with pagination.
func (r *GormBookingRepository) FindByTechnicianID(ctx context.Context, technicianID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.findPage(ctx, "technician_id = ?", technicianID, page, limit)
}

func (r *GormBookingRepository) findPage(ctx context.Context, cond string, arg interface{}, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where(cond, arg).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// FindOpenByParticipant retrieves the non-terminal bookings a user takes
// part in as client or technician.
func (r *GormBookingRepository) FindOpenByParticipant(ctx context.Context, userID uuid.UUID) ([]*bookingDomain.Booking, error) {
	terminal := []string{
		bookingDomain.StatusCompleted.String(),
		bookingDomain.StatusDeclined.String(),
		bookingDomain.StatusCancelled.String(),
	}

	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("(client_id = ? OR technician_id = ?) AND status NOT IN ?", userID, userID, terminal).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find open bookings: %w", err)
	}
	return toDomainBookings(models)
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	return r.updateTx(r.db.WithContext(ctx), bk)
}

// updateTx runs the optimistic-locking update on the given handle. The
// expected version is current version - 1 since IncrementVersion was
// called before persisting.
func (r *GormBookingRepository) updateTx(tx *gorm.DB, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	expectedVersion := bk.Version() - 1

	result := tx.
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":            model.Status,
			"payment_status":    model.PaymentStatus,
			"payment_method":    model.PaymentMethod,
			"receipt_url":       model.ReceiptURL,
			"transaction_id":    model.TransactionID,
			"final_price_cents": model.FinalPriceCents,
			"scheduled_at":      model.ScheduledAt,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// UpdateWithAudit persists an administrative override and its audit entry
// in a single transaction.
func (r *GormBookingRepository) UpdateWithAudit(ctx context.Context, bk *bookingDomain.Booking, entry *bookingDomain.PaymentAudit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updateTx(tx, bk); err != nil {
			return err
		}
		auditModel := PaymentAuditModel{
			ID:        entry.ID,
			BookingID: entry.BookingID,
			AdminID:   entry.AdminID,
			OldStatus: entry.OldStatus.String(),
			NewStatus: entry.NewStatus.String(),
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt,
		}
		if err := tx.Create(&auditModel).Error; err != nil {
			return fmt.Errorf("failed to write payment audit entry: %w", err)
		}
		return nil
	})
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// GormAuditRepository reads the payment audit trail.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository.
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// FindByBookingID returns the audit entries for a booking, oldest first.
func (r *GormAuditRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*bookingDomain.PaymentAudit, error) {
	var models []PaymentAuditModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list payment audit entries: %w", err)
	}

	entries := make([]*bookingDomain.PaymentAudit, len(models))
	for i, m := range models {
		oldStatus, err := bookingDomain.ParsePaymentStatus(m.OldStatus)
		if err != nil {
			return nil, err
		}
		newStatus, err := bookingDomain.ParsePaymentStatus(m.NewStatus)
		if err != nil {
			return nil, err
		}
		entries[i] = &bookingDomain.PaymentAudit{
			ID:        m.ID,
			BookingID: m.BookingID,
			AdminID:   m.AdminID,
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Reason:    m.Reason,
			CreatedAt: m.CreatedAt,
		}
	}
	return entries, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	var method *string
	if bk.PaymentMethod() != nil {
		m := string(*bk.PaymentMethod())
		method = &m
	}

	return &BookingModel{
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

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	var method *bookingDomain.PaymentMethod
	if m.PaymentMethod != nil {
		pm := bookingDomain.PaymentMethod(*m.PaymentMethod)
		method = &pm
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingNumber,
		m.ClientID,
		m.TechnicianID,
		m.CategoryID,
		m.Description,
		m.Address,
		m.City,
		m.ScheduledAt,
		m.EstimatedPriceCents,
		m.FinalPriceCents,
		status,
		paymentStatus,
		method,
		m.ReceiptURL,
		m.TransactionID,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
