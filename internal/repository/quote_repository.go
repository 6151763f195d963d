package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homefix-app/service-booking/internal/domain"
	quoteDomain "github.com/homefix-app/service-booking/internal/domain/quote"
)

// QuoteModel is the GORM model for the quotes table. The unique index on
// BookingID enforces at most one quote per booking.
type QuoteModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Conditions string    `gorm:"type:text;not null"`
	Equipment  string    `gorm:"type:text"`
	PriceCents int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (QuoteModel) TableName() string { return "quotes" }

// GormQuoteRepository implements QuoteRepository using GORM.
type GormQuoteRepository struct {
	db *gorm.DB
}

func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// Upsert writes the quote, overwriting any existing row for the booking.
// Both statements run in one transaction: a version-conditioned touch of
// the booking row serializes the upsert against concurrent transitions,
// the same way UpdateWithAudit couples its two writes.
func (r *GormQuoteRepository) Upsert(ctx context.Context, q *quoteDomain.Quote, bookingVersion int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guard := tx.
			Model(&BookingModel{}).
			Where("id = ? AND version = ?", q.BookingID(), bookingVersion).
			Update("updated_at", time.Now().UTC())
		if guard.Error != nil {
			return fmt.Errorf("failed to guard quote upsert: %w", guard.Error)
		}
		if guard.RowsAffected == 0 {
			return domain.NewConflictError("booking was modified by another transaction")
		}

		model := toQuoteModel(q)
		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "booking_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"conditions", "equipment", "price_cents", "updated_at"}),
			}).
			Create(model).Error; err != nil {
			return fmt.Errorf("failed to upsert quote: %w", err)
		}
		return nil
	})
}

// FindByBookingID retrieves the quote for a booking.
func (r *GormQuoteRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*quoteDomain.Quote, error) {
	var model QuoteModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Quote", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find quote: %w", err)
	}
	return toQuoteDomain(&model), nil
}

// ExistsForBooking reports whether a quote is on file for the booking.
func (r *GormQuoteRepository) ExistsForBooking(ctx context.Context, bookingID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&QuoteModel{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check quote existence: %w", err)
	}
	return count > 0, nil
}

// --- Conversions ---

func toQuoteModel(q *quoteDomain.Quote) *QuoteModel {
	return &QuoteModel{
		ID:         q.ID(),
		BookingID:  q.BookingID(),
		Conditions: q.Conditions(),
		Equipment:  q.Equipment(),
		PriceCents: q.PriceCents(),
		CreatedAt:  q.CreatedAt(),
		UpdatedAt:  q.UpdatedAt(),
	}
}

func toQuoteDomain(m *QuoteModel) *quoteDomain.Quote {
	return quoteDomain.Reconstruct(
		m.ID, m.BookingID,
		m.Conditions, m.Equipment,
		m.PriceCents,
		m.CreatedAt, m.UpdatedAt,
	)
}
