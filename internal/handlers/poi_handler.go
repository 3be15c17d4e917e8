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

// POIHandler handles point of interest endpoints
type POIHandler struct {
	poiRepo        *database.POIRepository
	allocationRepo *database.AllocationRepository
	logger         *logrus.Logger
}

// NewPOIHandler creates a new POIHandler
func NewPOIHandler(poiRepo *database.POIRepository, allocationRepo *database.AllocationRepository, logger *logrus.Logger) *POIHandler {
	return &POIHandler{
		poiRepo:        poiRepo,
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

// Create handles POST /api/v1/pois
func (h *POIHandler) Create(c *gin.Context) {
	var req models.CreatePOIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and category are required"})
		return
	}

	poi, err := h.poiRepo.Create(&req)
	if err != nil {
		if err.Error() == "capacity must be at least 1" {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("Failed to create POI")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create POI"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"poi": poi})
}

// GetAll handles GET /api/v1/pois with optional floor_id and category filters
func (h *POIHandler) GetAll(c *gin.Context) {
	pois, err := h.poiRepo.GetAll(c.Query("floor_id"), c.Query("category"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list POIs")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list POIs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pois": pois, "count": len(pois)})
}

// GetByID handles GET /api/v1/pois/:id
func (h *POIHandler) GetByID(c *gin.Context) {
	poi, err := h.poiRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "POI not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load POI")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load POI"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"poi": poi})
}

// Update handles PUT /api/v1/pois/:id. Flipping a room back to available
// is rejected while an active allocation still references it.
func (h *POIHandler) Update(c *gin.Context) {
	var req models.UpdatePOIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	poiID := c.Param("id")
	if req.Status != nil && *req.Status == models.POIStatusAvailable {
		active, err := h.allocationRepo.CountActiveByPOI(poiID)
		if err != nil {
			h.logger.WithError(err).Error("Failed to check active allocations")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update POI"})
			return
		}
		if active > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room has an active allocation; remove it first"})
			return
		}
	}

	poi, err := h.poiRepo.Update(poiID, &req)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "POI not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update POI")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update POI"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"poi": poi})
}

// Delete handles DELETE /api/v1/pois/:id
func (h *POIHandler) Delete(c *gin.Context) {
	if err := h.poiRepo.Delete(c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "POI not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete POI")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete POI"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
