package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// LocationRepository handles building, floor and venue database operations
type LocationRepository struct {
	db DB
}

// NewLocationRepository creates a new LocationRepository
func NewLocationRepository(db DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// CreateBuilding inserts a new building
func (r *LocationRepository) CreateBuilding(req *models.CreateBuildingRequest) (*models.Building, error) {
	building := &models.Building{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Address:  req.Address,
		Metadata: req.Metadata,
	}
	if building.Metadata == nil {
		building.Metadata = models.JSONMap{}
	}

	query := `
		INSERT INTO buildings (id, name, address, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(query,
		building.ID, building.Name, building.Address, building.Metadata,
	).Scan(&building.CreatedAt, &building.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create building: %w", err)
	}

	return building, nil
}

// GetBuildings retrieves all buildings
func (r *LocationRepository) GetBuildings() ([]models.Building, error) {
	buildings := []models.Building{}
	query := `
		SELECT id, name, address, metadata, created_at, updated_at
		FROM buildings
		ORDER BY name ASC
	`

	err := r.db.Select(&buildings, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list buildings: %w", err)
	}

	return buildings, nil
}

// GetBuildingByID retrieves a building by ID
func (r *LocationRepository) GetBuildingByID(buildingID string) (*models.Building, error) {
	building := &models.Building{}
	query := `
		SELECT id, name, address, metadata, created_at, updated_at
		FROM buildings
		WHERE id = $1
	`

	err := r.db.Get(building, query, buildingID)
	if err != nil {
		return nil, err
	}

	return building, nil
}

// DeleteBuilding removes a building and its floors, venues and POIs
func (r *LocationRepository) DeleteBuilding(buildingID string) error {
	result, err := r.db.Exec(`DELETE FROM buildings WHERE id = $1`, buildingID)
	if err != nil {
		return fmt.Errorf("failed to delete building: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// CreateFloor inserts a new floor
func (r *LocationRepository) CreateFloor(req *models.CreateFloorRequest) (*models.Floor, error) {
	floor := &models.Floor{
		ID:          uuid.New().String(),
		BuildingID:  req.BuildingID,
		FloorNumber: req.FloorNumber,
		Name:        req.Name,
		Metadata:    req.Metadata,
	}
	if floor.Metadata == nil {
		floor.Metadata = models.JSONMap{}
	}

	query := `
		INSERT INTO floors (id, building_id, floor_number, name, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(query,
		floor.ID, floor.BuildingID, floor.FloorNumber, floor.Name, floor.Metadata,
	).Scan(&floor.CreatedAt, &floor.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create floor: %w", err)
	}

	return floor, nil
}

// GetFloorsByBuildingID retrieves a building's floors ordered by floor number
func (r *LocationRepository) GetFloorsByBuildingID(buildingID string) ([]models.Floor, error) {
	floors := []models.Floor{}
	query := `
		SELECT id, building_id, floor_number, name, metadata, created_at, updated_at
		FROM floors
		WHERE building_id = $1
		ORDER BY floor_number ASC
	`

	err := r.db.Select(&floors, query, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list floors: %w", err)
	}

	return floors, nil
}

// CreateVenue inserts a new venue
func (r *LocationRepository) CreateVenue(req *models.CreateVenueRequest) (*models.Venue, error) {
	venue := &models.Venue{
		ID:       uuid.New().String(),
		FloorID:  req.FloorID,
		Name:     req.Name,
		Status:   req.Status,
		Metadata: req.Metadata,
	}
	if venue.Metadata == nil {
		venue.Metadata = models.JSONMap{}
	}

	query := `
		INSERT INTO venues (id, floor_id, name, status, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(query,
		venue.ID, venue.FloorID, venue.Name, venue.Status, venue.Metadata,
	).Scan(&venue.CreatedAt, &venue.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	return venue, nil
}

// GetVenuesByFloorID retrieves a floor's venues
func (r *LocationRepository) GetVenuesByFloorID(floorID string) ([]models.Venue, error) {
	venues := []models.Venue{}
	query := `
		SELECT id, floor_id, name, status, metadata, created_at, updated_at
		FROM venues
		WHERE floor_id = $1
		ORDER BY name ASC
	`

	err := r.db.Select(&venues, query, floorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}

	return venues, nil
}

// GetVenueByID retrieves a venue by ID
func (r *LocationRepository) GetVenueByID(venueID string) (*models.Venue, error) {
	venue := &models.Venue{}
	query := `
		SELECT id, floor_id, name, status, metadata, created_at, updated_at
		FROM venues
		WHERE id = $1
	`

	err := r.db.Get(venue, query, venueID)
	if err != nil {
		return nil, err
	}

	return venue, nil
}
