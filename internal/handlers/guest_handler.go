package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
	"github.com/venueatlas/venue-booking-backend/internal/services"
)

// GuestHandler handles guest endpoints
type GuestHandler struct {
	guestRepo        *database.GuestRepository
	ingestionService *services.IngestionService
	logger           *logrus.Logger
}

// NewGuestHandler creates a new GuestHandler
func NewGuestHandler(
	guestRepo *database.GuestRepository,
	ingestionService *services.IngestionService,
	logger *logrus.Logger,
) *GuestHandler {
	return &GuestHandler{
		guestRepo:        guestRepo,
		ingestionService: ingestionService,
		logger:           logger,
	}
}

// BulkIngest handles POST /api/v1/bookings/:id/guests/bulk
func (h *GuestHandler) BulkIngest(c *gin.Context) {
	var req struct {
		InvitationID *string                 `json:"invitation_id,omitempty"`
		Guests       []models.RawGuestRecord `json:"guests" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Guests) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guests array is required"})
		return
	}

	result, err := h.ingestionService.IngestGuests(c.Param("id"), req.InvitationID, req.Guests)
	if err != nil {
		if services.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to ingest guests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest guests"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":     "completed",
		"total":      len(result.Successful) + len(result.Failed),
		"successful": len(result.Successful),
		"failed":     len(result.Failed),
		"results":    result,
	})
}

// GetByBooking handles GET /api/v1/bookings/:id/guests
func (h *GuestHandler) GetByBooking(c *gin.Context) {
	guests, err := h.guestRepo.GetByBookingID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list guests")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list guests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guests": guests, "count": len(guests)})
}

// GetByID handles GET /api/v1/guests/:id
func (h *GuestHandler) GetByID(c *gin.Context) {
	guest, err := h.guestRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load guest")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load guest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guest": guest})
}

// Update handles PUT /api/v1/guests/:id
func (h *GuestHandler) Update(c *gin.Context) {
	var req models.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	guest, err := h.guestRepo.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update guest")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update guest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"guest": guest})
}

// Delete handles DELETE /api/v1/guests/:id
func (h *GuestHandler) Delete(c *gin.Context) {
	if err := h.guestRepo.Delete(c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "guest not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete guest")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete guest"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
