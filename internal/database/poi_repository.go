package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// POIRepository handles point of interest database operations
type POIRepository struct {
	db DB
}

// NewPOIRepository creates a new POIRepository
func NewPOIRepository(db DB) *POIRepository {
	return &POIRepository{db: db}
}

// Create inserts a new POI. Capacity defaults to 1, status to available.
func (r *POIRepository) Create(req *models.CreatePOIRequest) (*models.POI, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	poi := &models.POI{
		ID:       uuid.New().String(),
		FloorID:  req.FloorID,
		Name:     req.Name,
		Category: req.Category,
		Capacity: 1,
		Status:   models.POIStatusAvailable,
		Metadata: req.Metadata,
	}
	if req.Capacity != nil {
		poi.Capacity = *req.Capacity
	}
	if poi.Metadata == nil {
		poi.Metadata = models.JSONMap{}
	}

	query := `
		INSERT INTO pois (id, floor_id, name, category, capacity, status, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(query,
		poi.ID, poi.FloorID, poi.Name, poi.Category, poi.Capacity, poi.Status, poi.Metadata,
	).Scan(&poi.CreatedAt, &poi.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create POI: %w", err)
	}

	return poi, nil
}

// GetAll retrieves POIs, optionally filtered by floor and category
func (r *POIRepository) GetAll(floorID, category string) ([]models.POI, error) {
	pois := []models.POI{}
	query := `
		SELECT id, floor_id, name, category, capacity, status, metadata, created_at, updated_at
		FROM pois
		WHERE ($1 = '' OR floor_id::text = $1)
		  AND ($2 = '' OR category = $2)
		ORDER BY name ASC
	`

	err := r.db.Select(&pois, query, floorID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list POIs: %w", err)
	}

	return pois, nil
}

// GetByID retrieves a POI by ID
func (r *POIRepository) GetByID(poiID string) (*models.POI, error) {
	poi := &models.POI{}
	query := `
		SELECT id, floor_id, name, category, capacity, status, metadata, created_at, updated_at
		FROM pois
		WHERE id = $1
	`

	err := r.db.Get(poi, query, poiID)
	if err != nil {
		return nil, err
	}

	return poi, nil
}

// Update applies a partial POI update
func (r *POIRepository) Update(poiID string, req *models.UpdatePOIRequest) (*models.POI, error) {
	if req.Capacity != nil && *req.Capacity < 1 {
		return nil, fmt.Errorf("capacity must be at least 1")
	}

	poi := &models.POI{}
	query := `
		UPDATE pois
		SET floor_id = COALESCE($2, floor_id),
		    name = COALESCE($3, name),
		    category = COALESCE($4, category),
		    capacity = COALESCE($5, capacity),
		    status = COALESCE($6, status),
		    metadata = COALESCE($7, metadata),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, floor_id, name, category, capacity, status, metadata, created_at, updated_at
	`

	var metadata interface{}
	if req.Metadata != nil {
		metadata = req.Metadata
	}

	err := r.db.Get(poi, query, poiID,
		req.FloorID, req.Name, req.Category, req.Capacity, req.Status, metadata)
	if err != nil {
		return nil, err
	}

	return poi, nil
}

// Delete removes a POI
func (r *POIRepository) Delete(poiID string) error {
	result, err := r.db.Exec(`DELETE FROM pois WHERE id = $1`, poiID)
	if err != nil {
		return fmt.Errorf("failed to delete POI: %w", err)
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
