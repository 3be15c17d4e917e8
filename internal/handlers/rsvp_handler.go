package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// RSVPHandler handles the public RSVP endpoints. Lookups use the guest's
// opaque token, never the guest ID, so invitation links leak nothing.
type RSVPHandler struct {
	guestRepo   *database.GuestRepository
	bookingRepo *database.BookingRepository
	eventRepo   *database.EventRepository
	logger      *logrus.Logger
}

// NewRSVPHandler creates a new RSVPHandler
func NewRSVPHandler(
	guestRepo *database.GuestRepository,
	bookingRepo *database.BookingRepository,
	eventRepo *database.EventRepository,
	logger *logrus.Logger,
) *RSVPHandler {
	return &RSVPHandler{
		guestRepo:   guestRepo,
		bookingRepo: bookingRepo,
		eventRepo:   eventRepo,
		logger:      logger,
	}
}

// GetByToken handles GET /api/v1/rsvp/:token. The first open flips the
// guest from pending to viewed.
func (h *RSVPHandler) GetByToken(c *gin.Context) {
	guest, err := h.guestRepo.MarkViewedByToken(c.Param("token"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load invitation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invitation"})
		return
	}

	booking, err := h.bookingRepo.GetByID(guest.BookingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load invitation booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invitation"})
		return
	}

	events, err := h.eventRepo.GetByBookingID(guest.BookingID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load invitation events")
		events = []models.Event{}
	}

	c.JSON(http.StatusOK, gin.H{
		"guest":   guest,
		"booking": booking,
		"events":  events,
	})
}

// UpdateStatus handles PATCH /api/v1/rsvp/:token
func (h *RSVPHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status models.GuestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if req.Status != models.GuestStatusAccepted && req.Status != models.GuestStatusDeclined {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be accepted or declined"})
		return
	}

	guest, err := h.guestRepo.UpdateStatusByToken(c.Param("token"), req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invitation not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update RSVP status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update invitation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guest": guest})
}
