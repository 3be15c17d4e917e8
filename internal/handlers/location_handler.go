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

// LocationHandler handles building, floor and venue endpoints
type LocationHandler struct {
	locationRepo *database.LocationRepository
	logger       *logrus.Logger
}

// NewLocationHandler creates a new LocationHandler
func NewLocationHandler(locationRepo *database.LocationRepository, logger *logrus.Logger) *LocationHandler {
	return &LocationHandler{locationRepo: locationRepo, logger: logger}
}

// CreateBuilding handles POST /api/v1/buildings
func (h *LocationHandler) CreateBuilding(c *gin.Context) {
	var req models.CreateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	building, err := h.locationRepo.CreateBuilding(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create building")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create building"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"building": building})
}

// GetBuildings handles GET /api/v1/buildings
func (h *LocationHandler) GetBuildings(c *gin.Context) {
	buildings, err := h.locationRepo.GetBuildings()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list buildings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list buildings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"buildings": buildings, "count": len(buildings)})
}

// GetBuildingByID handles GET /api/v1/buildings/:id
func (h *LocationHandler) GetBuildingByID(c *gin.Context) {
	building, err := h.locationRepo.GetBuildingByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "building not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load building")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load building"})
		return
	}

	floors, err := h.locationRepo.GetFloorsByBuildingID(building.ID)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load building floors")
		floors = []models.Floor{}
	}

	c.JSON(http.StatusOK, gin.H{"building": building, "floors": floors})
}

// DeleteBuilding handles DELETE /api/v1/buildings/:id
func (h *LocationHandler) DeleteBuilding(c *gin.Context) {
	if err := h.locationRepo.DeleteBuilding(c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "building not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete building")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete building"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// CreateFloor handles POST /api/v1/floors
func (h *LocationHandler) CreateFloor(c *gin.Context) {
	var req models.CreateFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "building_id is required"})
		return
	}

	floor, err := h.locationRepo.CreateFloor(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create floor")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create floor"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"floor": floor})
}

// GetFloorVenues handles GET /api/v1/floors/:id/venues
func (h *LocationHandler) GetFloorVenues(c *gin.Context) {
	venues, err := h.locationRepo.GetVenuesByFloorID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to list venues")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list venues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"venues": venues, "count": len(venues)})
}

// CreateVenue handles POST /api/v1/venues
func (h *LocationHandler) CreateVenue(c *gin.Context) {
	var req models.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "floor_id and name are required"})
		return
	}

	venue, err := h.locationRepo.CreateVenue(&req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create venue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create venue"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"venue": venue})
}

// GetVenueByID handles GET /api/v1/venues/:id
func (h *LocationHandler) GetVenueByID(c *gin.Context) {
	venue, err := h.locationRepo.GetVenueByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "venue not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to load venue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load venue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"venue": venue})
}
