package services

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// IngestionService turns raw guest records into persisted guests. Records
// are processed independently so one bad row never sinks the rest of the
// roster; callers get a per-record accounting instead.
type IngestionService struct {
	guestRepo   *database.GuestRepository
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	guestRepo *database.GuestRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		guestRepo:   guestRepo,
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// IngestGuests validates and persists a batch of raw guest records for a
// booking. Every input record lands in exactly one of Successful or Failed.
// An optional invitation id is stamped onto every created guest. After the
// pass the booking's denormalized guest count is refreshed.
func (s *IngestionService) IngestGuests(bookingID string, invitationID *string, records []models.RawGuestRecord) (*models.IngestionResult, error) {
	if bookingID == "" {
		return nil, NewValidationError("booking_id is required")
	}

	// The booking must exist before any guest row references it
	if _, err := s.bookingRepo.GetByID(bookingID); err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", bookingID, err)
	}

	result := &models.IngestionResult{
		Successful: []models.Guest{},
		Failed:     []models.FailedGuestRecord{},
	}

	for i, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			result.Failed = append(result.Failed, models.FailedGuestRecord{
				Record: record,
				Reason: "name is required",
			})
			continue
		}

		guest := &models.Guest{
			BookingID:    bookingID,
			InvitationID: invitationID,
			Name:         name,
			Phone:        record.Phone,
			Email:        record.Email,
			GuestType:    models.ParseGuestType(record.GuestType),
			Metadata:     record.Metadata,
		}

		if err := s.guestRepo.Create(guest); err != nil {
			s.logger.WithFields(logrus.Fields{
				"booking_id": bookingID,
				"record":     i,
				"error":      err.Error(),
			}).Warn("Guest record rejected")
			result.Failed = append(result.Failed, models.FailedGuestRecord{
				Record: record,
				Reason: err.Error(),
			})
			continue
		}

		result.Successful = append(result.Successful, *guest)
	}

	if len(result.Successful) > 0 {
		guests, err := s.guestRepo.GetByBookingID(bookingID)
		if err == nil {
			if err := s.bookingRepo.UpdateGuestCount(bookingID, len(guests)); err != nil {
				s.logger.WithField("booking_id", bookingID).WithError(err).
					Warn("Failed to refresh guest count")
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"successful": len(result.Successful),
		"failed":     len(result.Failed),
	}).Info("Guest ingestion completed")

	return result, nil
}

// IngestRoster ingests an uploaded roster and requires that it produced at
// least one guest. When every row failed it returns the per-record
// accounting alongside ErrNoGuestsCreated so callers can report both.
func (s *IngestionService) IngestRoster(bookingID string, invitationID *string, records []models.RawGuestRecord) (*models.IngestionResult, error) {
	result, err := s.IngestGuests(bookingID, invitationID, records)
	if err != nil {
		return nil, err
	}
	if len(result.Successful) == 0 {
		return result, ErrNoGuestsCreated
	}
	return result, nil
}
