package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
	"github.com/venueatlas/venue-booking-backend/internal/services"
	"github.com/venueatlas/venue-booking-backend/internal/utils"
	"github.com/venueatlas/venue-booking-backend/pkg/spreadsheet"
)

// BookingHandler handles booking endpoints
type BookingHandler struct {
	bookingRepo   *database.BookingRepository
	eventRepo     *database.EventRepository
	guestRepo     *database.GuestRepository
	orchestrator  *services.BookingOrchestratorService
	maxUploadSize int64
	logger        *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	bookingRepo *database.BookingRepository,
	eventRepo *database.EventRepository,
	guestRepo *database.GuestRepository,
	orchestrator *services.BookingOrchestratorService,
	maxUploadSize int64,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingRepo:   bookingRepo,
		eventRepo:     eventRepo,
		guestRepo:     guestRepo,
		orchestrator:  orchestrator,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// Create handles POST /api/v1/bookings. The body is either JSON with inline
// guests, or multipart form fields with an attached roster file.
func (h *BookingHandler) Create(c *gin.Context) {
	var req models.CreateBookingRequest

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := h.bindMultipart(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	// Record where the booking came from
	if req.Metadata == nil {
		req.Metadata = models.JSONMap{}
	}
	info := utils.GetClientInfo(c)
	req.Metadata["client"] = map[string]interface{}{
		"ip":        info.IP,
		"browser":   info.Browser,
		"os":        info.OS,
		"is_mobile": info.IsMobile,
	}

	response, err := h.orchestrator.CreateBooking(&req)
	if err != nil {
		if services.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to create booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":      "created",
		"booking":     response.Booking,
		"events":      response.Events,
		"host":        response.Host,
		"passcode":    response.HostPasscode,
		"guests":      response.Guests,
		"allocations": response.Allocations,
	})
}

// bindMultipart reads booking fields and an optional guest roster file from
// a multipart form
func (h *BookingHandler) bindMultipart(c *gin.Context, req *models.CreateBookingRequest) error {
	req.BookingCategory = c.PostForm("booking_category")
	req.HostName = c.PostForm("host_name")
	req.HostEmail = c.PostForm("host_email")
	req.StartDate = c.PostForm("start_date")
	req.EndDate = c.PostForm("end_date")
	if v := c.PostForm("building_id"); v != "" {
		req.BuildingID = &v
	}
	if v := c.PostForm("host_phone"); v != "" {
		req.HostPhone = &v
	}
	if v := c.PostForm("invitation_id"); v != "" {
		req.InvitationID = &v
	}

	// Events arrive as a JSON-encoded array alongside the scalar fields
	if v := c.PostForm("events"); v != "" {
		if err := json.Unmarshal([]byte(v), &req.Events); err != nil {
			return errors.New("invalid events field: expected a JSON array")
		}
	}

	fileHeader, err := c.FormFile("guest_file")
	if err != nil {
		// No roster attached; the booking is still valid
		return nil
	}
	if fileHeader.Size > h.maxUploadSize {
		return errors.New("roster file exceeds the upload size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.New("failed to read roster file")
	}
	defer file.Close()

	records, err := spreadsheet.Parse(file, fileHeader.Filename)
	if err != nil {
		return err
	}

	for _, record := range records {
		raw := models.RawGuestRecord{Name: record.Name, GuestType: record.GuestType}
		if record.Phone != "" {
			phone := record.Phone
			raw.Phone = &phone
		}
		if record.Email != "" {
			email := record.Email
			raw.Email = &email
		}
		req.Guests = append(req.Guests, raw)
	}

	return nil
}

// GetAll handles GET /api/v1/bookings
func (h *BookingHandler) GetAll(c *gin.Context) {
	bookings, err := h.bookingRepo.GetAll()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetByID handles GET /api/v1/bookings/:id
func (h *BookingHandler) GetByID(c *gin.Context) {
	bookingID := c.Param("id")

	booking, err := h.bookingRepo.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load booking"})
		return
	}

	events, err := h.eventRepo.GetByBookingID(bookingID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load booking events")
		events = []models.Event{}
	}

	guests, err := h.guestRepo.GetByBookingID(bookingID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load booking guests")
		guests = []models.Guest{}
	}

	c.JSON(http.StatusOK, gin.H{
		"booking": booking,
		"events":  events,
		"guests":  guests,
	})
}

// Update handles PUT /api/v1/bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	booking, err := h.bookingRepo.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// Delete handles DELETE /api/v1/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	booking, err := h.bookingRepo.Delete(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "booking": booking})
}
