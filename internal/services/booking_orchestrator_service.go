package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
	"github.com/venueatlas/venue-booking-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

const hostPasscodeLength = 12

// BookingOrchestratorService handles the host → booking → events → guests →
// allocation creation flow. The booking and its events commit atomically;
// guest ingestion and room allocation run afterwards with their own failure
// accounting so a partial roster still yields a usable booking.
type BookingOrchestratorService struct {
	userRepo          *database.UserRepository
	bookingRepo       *database.BookingRepository
	eventRepo         *database.EventRepository
	ingestionService  *IngestionService
	allocationService *AllocationService
	logger            *logrus.Logger
}

// NewBookingOrchestratorService creates a new orchestrator service
func NewBookingOrchestratorService(
	userRepo *database.UserRepository,
	bookingRepo *database.BookingRepository,
	eventRepo *database.EventRepository,
	ingestionService *IngestionService,
	allocationService *AllocationService,
	logger *logrus.Logger,
) *BookingOrchestratorService {
	return &BookingOrchestratorService{
		userRepo:          userRepo,
		bookingRepo:       bookingRepo,
		eventRepo:         eventRepo,
		ingestionService:  ingestionService,
		allocationService: allocationService,
		logger:            logger,
	}
}

// CreateBooking runs the full orchestrated create
func (s *BookingOrchestratorService) CreateBooking(req *models.CreateBookingRequest) (*models.CreateBookingResponse, error) {
	// 1. Validate request
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid start_date: %s", req.StartDate))
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid end_date: %s", req.EndDate))
	}
	if endDate.Before(startDate) {
		return nil, NewValidationError("end_date must not be before start_date")
	}

	// 2. Find or create the host account
	host, passcode, err := s.findOrCreateHost(req)
	if err != nil {
		return nil, err
	}

	// 3. Booking and events commit together
	tx, err := s.bookingRepo.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	booking := &models.Booking{
		BuildingID:      req.BuildingID,
		BookingCategory: req.BookingCategory,
		HostID:          &host.ID,
		HostName:        req.HostName,
		HostEmail:       req.HostEmail,
		HostPhone:       req.HostPhone,
		StartDate:       startDate,
		EndDate:         endDate,
		Metadata:        req.Metadata,
	}
	if err := s.bookingRepo.InsertTx(tx, booking); err != nil {
		return nil, err
	}

	events := []models.Event{}
	for _, input := range req.Events {
		if strings.TrimSpace(input.EventName) == "" {
			continue
		}

		startTime, err := parseDate(input.StartDate)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"booking_id": booking.ID,
				"event":      input.EventName,
			}).Warn("Skipping event with invalid start date")
			continue
		}

		event := &models.Event{
			BookingID: booking.ID,
			VenueID:   input.VenueID,
			Name:      strings.TrimSpace(input.EventName),
			EventType: input.EventType,
			StartTime: startTime,
		}
		if endTime, err := parseDate(input.EndDate); err == nil {
			event.EndTime = &endTime
		}
		if input.Description != nil && *input.Description != "" {
			event.Description = input.Description
		}

		if err := s.eventRepo.InsertTx(tx, event); err != nil {
			return nil, err
		}
		events = append(events, *event)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	response := &models.CreateBookingResponse{
		Booking:      booking,
		Events:       events,
		Host:         host,
		HostPasscode: passcode,
	}

	// 4. Ingest guests; per-record failures do not undo the booking
	if len(req.Guests) > 0 {
		ingestion, err := s.ingestionService.IngestGuests(booking.ID, req.InvitationID, req.Guests)
		if err != nil {
			s.logger.WithField("booking_id", booking.ID).WithError(err).
				Error("Guest ingestion failed")
		} else {
			response.Guests = ingestion
			booking.GuestCount = len(ingestion.Successful)
		}
	}

	// 5. Allocate rooms for the ingested guests over the booking's stay
	if response.Guests != nil && len(response.Guests.Successful) > 0 {
		guestIDs := make([]string, 0, len(response.Guests.Successful))
		for _, g := range response.Guests.Successful {
			guestIDs = append(guestIDs, g.ID)
		}

		allocations, err := s.allocationService.BulkAllocate(&models.BulkAllocateRequest{
			GuestIDs:     guestIDs,
			CheckInDate:  req.StartDate,
			CheckOutDate: req.EndDate,
			BookingID:    booking.ID,
		})
		switch {
		case err == nil:
			response.Allocations = allocations
		case errors.Is(err, ErrNoRoomsAvailable):
			response.Allocations = allGuestsUnallocated(response.Guests.Successful, "no rooms available")
		default:
			// The booking stands; the response still has to show that no
			// guest got a room.
			s.logger.WithField("booking_id", booking.ID).WithError(err).
				Error("Room allocation failed")
			response.Allocations = allGuestsUnallocated(response.Guests.Successful, "allocation failed")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"host_id":    host.ID,
		"events":     len(events),
	}).Info("Booking created")

	return response, nil
}

// allGuestsUnallocated reports every ingested guest as failed with a
// shared reason
func allGuestsUnallocated(guests []models.Guest, reason string) *models.BulkAllocationResult {
	failed := make([]models.AllocationFailure, 0, len(guests))
	for _, g := range guests {
		failed = append(failed, models.AllocationFailure{
			Guest:  g.Name,
			Reason: reason,
		})
	}
	return &models.BulkAllocationResult{
		Successful: []models.AllocationSuccess{},
		Failed:     failed,
	}
}

// findOrCreateHost looks up the host by email and provisions an account
// with a random passcode when none exists. The passcode is returned exactly
// once, in the create response; only its bcrypt hash is stored.
func (s *BookingOrchestratorService) findOrCreateHost(req *models.CreateBookingRequest) (*models.User, *string, error) {
	host, err := s.userRepo.GetUserByEmail(req.HostEmail)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up host: %w", err)
	}
	if host != nil {
		return host, nil, nil
	}

	passcode, err := utils.GeneratePasscode(hostPasscodeLength)
	if err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash passcode: %w", err)
	}

	host, err = s.userRepo.CreateUser(req.HostEmail, string(hash), &req.HostName, req.HostPhone, "host")
	if err != nil {
		return nil, nil, err
	}

	s.logger.WithField("host_id", host.ID).Info("Provisioned host account")
	return host, &passcode, nil
}
