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
	"github.com/venueatlas/venue-booking-backend/pkg/spreadsheet"
)

// AllocationHandler handles room allocation endpoints
type AllocationHandler struct {
	allocationRepo    *database.AllocationRepository
	allocationService *services.AllocationService
	ingestionService  *services.IngestionService
	maxUploadSize     int64
	logger            *logrus.Logger
}

// NewAllocationHandler creates a new AllocationHandler
func NewAllocationHandler(
	allocationRepo *database.AllocationRepository,
	allocationService *services.AllocationService,
	ingestionService *services.IngestionService,
	maxUploadSize int64,
	logger *logrus.Logger,
) *AllocationHandler {
	return &AllocationHandler{
		allocationRepo:    allocationRepo,
		allocationService: allocationService,
		ingestionService:  ingestionService,
		maxUploadSize:     maxUploadSize,
		logger:            logger,
	}
}

// AvailableRooms handles GET /api/v1/allocations/rooms/available
func (h *AllocationHandler) AvailableRooms(c *gin.Context) {
	rooms, err := h.allocationService.AvailableRooms()
	if err != nil {
		h.logger.WithError(err).Error("Failed to resolve room pool")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve available rooms"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "count": len(rooms)})
}

// BulkAllocate handles POST /api/v1/allocations/bulk
func (h *AllocationHandler) BulkAllocate(c *gin.Context) {
	var req models.BulkAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "guest_ids, check_in_date, check_out_date, and booking_id are required"})
		return
	}

	h.runBulkAllocation(c, &req)
}

// BulkAllocateFromFile handles POST /api/v1/allocations/bulk/file. The
// roster file is ingested into the booking first; the guests it produced
// are then allocated in one batch.
func (h *AllocationHandler) BulkAllocateFromFile(c *gin.Context) {
	bookingID := c.PostForm("booking_id")
	checkIn := c.PostForm("check_in_date")
	checkOut := c.PostForm("check_out_date")
	if bookingID == "" || checkIn == "" || checkOut == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id, check_in_date, and check_out_date are required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster file is required"})
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster file exceeds the upload size limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read roster file"})
		return
	}
	defer file.Close()

	records, err := spreadsheet.Parse(file, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw := make([]models.RawGuestRecord, 0, len(records))
	for _, record := range records {
		rec := models.RawGuestRecord{Name: record.Name, GuestType: record.GuestType}
		if record.Phone != "" {
			phone := record.Phone
			rec.Phone = &phone
		}
		if record.Email != "" {
			email := record.Email
			rec.Email = &email
		}
		raw = append(raw, rec)
	}

	var invitationID *string
	if v := c.PostForm("invitation_id"); v != "" {
		invitationID = &v
	}

	ingestion, err := h.ingestionService.IngestRoster(bookingID, invitationID, raw)
	if err != nil {
		if services.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, services.ErrNoGuestsCreated) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  err.Error(),
				"failed": ingestion.Failed,
			})
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to ingest roster")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest roster"})
		return
	}

	guestIDs := make([]string, 0, len(ingestion.Successful))
	for _, g := range ingestion.Successful {
		guestIDs = append(guestIDs, g.ID)
	}

	h.runBulkAllocation(c, &models.BulkAllocateRequest{
		GuestIDs:     guestIDs,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		BookingID:    bookingID,
	})
}

// runBulkAllocation executes the batch and writes the shared response shape
func (h *AllocationHandler) runBulkAllocation(c *gin.Context, req *models.BulkAllocateRequest) {
	result, err := h.allocationService.BulkAllocate(req)
	if err != nil {
		switch {
		case services.IsValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrNoRoomsAvailable):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no rooms available"})
		default:
			h.logger.WithError(err).Error("Bulk allocation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to allocate rooms"})
		}
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

// Create handles POST /api/v1/allocations
func (h *AllocationHandler) Create(c *gin.Context) {
	var req models.CreateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id, guest_id, poi_id, check_in_date and check_out_date are required"})
		return
	}

	checkIn, err := parseDateParam(req.CheckInDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in_date"})
		return
	}
	checkOut, err := parseDateParam(req.CheckOutDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out_date"})
		return
	}

	alloc := &models.Allocation{
		BookingID:    req.BookingID,
		GuestID:      req.GuestID,
		POIID:        req.POIID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
	}
	if err := h.allocationRepo.Create(alloc); err != nil {
		h.logger.WithError(err).Error("Failed to create allocation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create allocation"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"allocation": alloc})
}

// GetAll handles GET /api/v1/allocations
func (h *AllocationHandler) GetAll(c *gin.Context) {
	allocations, err := h.allocationRepo.GetAll()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list allocations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list allocations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocations": allocations, "count": len(allocations)})
}

// GetByID handles GET /api/v1/allocations/:id
func (h *AllocationHandler) GetByID(c *gin.Context) {
	detail, err := h.allocationRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load allocation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load allocation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": detail})
}

// Update handles PUT /api/v1/allocations/:id
func (h *AllocationHandler) Update(c *gin.Context) {
	var req models.UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	alloc, err := h.allocationRepo.Update(c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update allocation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update allocation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": alloc})
}

// Delete handles DELETE /api/v1/allocations/:id
func (h *AllocationHandler) Delete(c *gin.Context) {
	alloc, err := h.allocationRepo.Delete(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "allocation not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete allocation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete allocation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted", "allocation": alloc})
}
