package models

import "time"

// Building represents an indoor-navigable venue building
type Building struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Address   *string   `json:"address,omitempty" db:"address"`
	Metadata  JSONMap   `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Floor belongs to a building
type Floor struct {
	ID          string    `json:"id" db:"id"`
	BuildingID  string    `json:"building_id" db:"building_id"`
	FloorNumber int       `json:"floor_number" db:"floor_number"`
	Name        *string   `json:"name,omitempty" db:"name"`
	Metadata    JSONMap   `json:"metadata" db:"metadata"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Venue is a named bookable area on a floor, used by events
type Venue struct {
	ID        string    `json:"id" db:"id"`
	FloorID   string    `json:"floor_id" db:"floor_id"`
	Name      string    `json:"name" db:"name"`
	Status    *string   `json:"status,omitempty" db:"status"`
	Metadata  JSONMap   `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateBuildingRequest represents the request to create a building
type CreateBuildingRequest struct {
	Name     string  `json:"name" binding:"required"`
	Address  *string `json:"address,omitempty"`
	Metadata JSONMap `json:"metadata,omitempty"`
}

// CreateFloorRequest represents the request to create a floor
type CreateFloorRequest struct {
	BuildingID  string  `json:"building_id" binding:"required"`
	FloorNumber int     `json:"floor_number"`
	Name        *string `json:"name,omitempty"`
	Metadata    JSONMap `json:"metadata,omitempty"`
}

// CreateVenueRequest represents the request to create a venue
type CreateVenueRequest struct {
	FloorID  string  `json:"floor_id" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Status   *string `json:"status,omitempty"`
	Metadata JSONMap `json:"metadata,omitempty"`
}
