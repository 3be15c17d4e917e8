package models

import (
	"errors"
	"time"
)

// POIStatus represents the availability of a point of interest
type POIStatus string

const (
	POIStatusAvailable   POIStatus = "available"
	POIStatusUnavailable POIStatus = "unavailable"
)

// Allocatable POIs carry this category; other categories (stairs, exits,
// information desks) are navigation-only and never enter the room pool.
const POICategoryRoom = "Room"

// POI represents a point of interest inside a building. Capacity is a
// first-class column, not a metadata key; it defaults to 1 when unset.
type POI struct {
	ID        string    `json:"id" db:"id"`
	FloorID   *string   `json:"floor_id,omitempty" db:"floor_id"`
	Name      string    `json:"name" db:"name"`
	Category  string    `json:"category" db:"category"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Status    POIStatus `json:"status" db:"status"`
	Metadata  JSONMap   `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveCapacity returns the capacity used by the allocation policy
func (p *POI) EffectiveCapacity() int {
	if p.Capacity <= 0 {
		return 1
	}
	return p.Capacity
}

// IsAllocatable reports whether the POI can enter the room pool
func (p *POI) IsAllocatable() bool {
	return p.Category == POICategoryRoom && p.Status == POIStatusAvailable
}

// CreatePOIRequest represents the request to create a POI
type CreatePOIRequest struct {
	FloorID  *string `json:"floor_id,omitempty"`
	Name     string  `json:"name" binding:"required"`
	Category string  `json:"category" binding:"required"`
	Capacity *int    `json:"capacity,omitempty"`
	Metadata JSONMap `json:"metadata,omitempty"`
}

// UpdatePOIRequest represents a partial POI update
type UpdatePOIRequest struct {
	FloorID  *string    `json:"floor_id,omitempty"`
	Name     *string    `json:"name,omitempty"`
	Category *string    `json:"category,omitempty"`
	Capacity *int       `json:"capacity,omitempty"`
	Status   *POIStatus `json:"status,omitempty"`
	Metadata JSONMap    `json:"metadata,omitempty"`
}

// Validate validates the create POI request
func (r *CreatePOIRequest) Validate() error {
	if r.Capacity != nil && *r.Capacity < 1 {
		return errors.New("capacity must be at least 1")
	}
	return nil
}
