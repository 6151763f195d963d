package photo

import (
	"time"

	"github.com/google/uuid"

	"github.com/homefix-app/service-booking/internal/domain"
)

// BookingPhoto is a client-uploaded photo describing the problem on a
// booking. Upload storage is external; only the URL is kept here.
type BookingPhoto struct {
	id         uuid.UUID
	bookingID  uuid.UUID
	uploaderID uuid.UUID
	photoURL   string
	caption    string
	createdAt  time.Time
}

// NewBookingPhoto creates a new booking photo record.
func NewBookingPhoto(bookingID, uploaderID uuid.UUID, photoURL, caption string) (*BookingPhoto, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if uploaderID == uuid.Nil {
		return nil, domain.NewValidationError("uploader ID is required")
	}
	if photoURL == "" {
		return nil, domain.NewValidationError("photo URL is required")
	}

	return &BookingPhoto{
		id:         uuid.New(),
		bookingID:  bookingID,
		uploaderID: uploaderID,
		photoURL:   photoURL,
		caption:    caption,
		createdAt:  time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a BookingPhoto from persistence.
func Reconstruct(id, bookingID, uploaderID uuid.UUID, photoURL, caption string, createdAt time.Time) *BookingPhoto {
	return &BookingPhoto{
		id:         id,
		bookingID:  bookingID,
		uploaderID: uploaderID,
		photoURL:   photoURL,
		caption:    caption,
		createdAt:  createdAt,
	}
}

// Getters.
func (p *BookingPhoto) ID() uuid.UUID         { return p.id }
func (p *BookingPhoto) BookingID() uuid.UUID  { return p.bookingID }
func (p *BookingPhoto) UploaderID() uuid.UUID { return p.uploaderID }
func (p *BookingPhoto) PhotoURL() string      { return p.photoURL }
func (p *BookingPhoto) Caption() string       { return p.caption }
func (p *BookingPhoto) CreatedAt() time.Time  { return p.createdAt }
