package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/homefix-app/service-booking/internal/domain"
	bookingDomain "github.com/homefix-app/service-booking/internal/domain/booking"
	photoDomain "github.com/homefix-app/service-booking/internal/domain/photo"
)

// AttachPhotoRequest holds the data to attach a problem photo.
type AttachPhotoRequest struct {
	PhotoURL string `json:"photo_url" binding:"required"`
	Caption  string `json:"caption"`
}

// PhotoDTO is the API response representation of a booking photo.
type PhotoDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	UploaderID uuid.UUID `json:"uploader_id"`
	PhotoURL   string    `json:"photo_url"`
	Caption    string    `json:"caption,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PhotoService handles booking photo use cases.
type PhotoService struct {
	bookings bookingDomain.BookingRepository
	repo     photoDomain.PhotoRepository
	logger   *zap.Logger
}

// NewPhotoService creates a new PhotoService.
func NewPhotoService(bookings bookingDomain.BookingRepository, repo photoDomain.PhotoRepository, logger *zap.Logger) *PhotoService {
	return &PhotoService{bookings: bookings, repo: repo, logger: logger}
}

// AttachPhoto attaches a problem photo to a booking the client owns.
// Photos document the job for the technician, so terminal bookings no
// longer accept them.
func (s *PhotoService) AttachPhoto(ctx context.Context, bookingID, clientID uuid.UUID, req AttachPhotoRequest) (*PhotoDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(clientID, bookingDomain.RoleClient, bk, bookingDomain.ActionAttachPhoto); err != nil {
		return nil, err
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewInvalidStateError("photos cannot be attached to a closed booking").
			WithDetail("current_status", bk.Status().String())
	}

	photo, err := photoDomain.NewBookingPhoto(bookingID, clientID, req.PhotoURL, req.Caption)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, photo); err != nil {
		return nil, err
	}

	s.logger.Info("photo attached",
		zap.String("booking_id", bookingID.String()),
		zap.String("photo_id", photo.ID().String()),
	)

	return toPhotoDTO(photo), nil
}

// GetBookingPhotos returns all photos of a booking the actor may read.
func (s *PhotoService) GetBookingPhotos(ctx context.Context, bookingID, actorID uuid.UUID, role bookingDomain.ActorRole) ([]*PhotoDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.Authorize(actorID, role, bk, bookingDomain.ActionRead); err != nil {
		return nil, err
	}

	photos, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	dtos := make([]*PhotoDTO, len(photos))
	for i, p := range photos {
		dtos[i] = toPhotoDTO(p)
	}
	return dtos, nil
}

func toPhotoDTO(p *photoDomain.BookingPhoto) *PhotoDTO {
	return &PhotoDTO{
		ID:         p.ID(),
		BookingID:  p.BookingID(),
		UploaderID: p.UploaderID(),
		PhotoURL:   p.PhotoURL(),
		Caption:    p.Caption(),
		CreatedAt:  p.CreatedAt(),
	}
}
