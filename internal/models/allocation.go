package models

import (
	"errors"
	"time"
)

// AllocationStatus represents the lifecycle of a room allocation
type AllocationStatus string

const (
	AllocationStatusActive  AllocationStatus = "active"
	AllocationStatusRemoved AllocationStatus = "removed"
)

// Allocation binds one guest to one room for a date range. A room with an
// active allocation never appears in the pool, so at any committed state a
// POI has at most one active allocation referencing it.
type Allocation struct {
	ID           string           `json:"id" db:"id"`
	BookingID    string           `json:"booking_id" db:"booking_id"`
	GuestID      string           `json:"guest_id" db:"guest_id"`
	POIID        string           `json:"poi_id" db:"poi_id"`
	CheckInDate  time.Time        `json:"check_in_date" db:"check_in_date"`
	CheckOutDate time.Time        `json:"check_out_date" db:"check_out_date"`
	Status       AllocationStatus `json:"status" db:"status"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// AllocationDetail is an allocation joined with its guest, room and booking
type AllocationDetail struct {
	Allocation
	RoomName  string `json:"room_name" db:"room_name"`
	GuestName string `json:"guest_name" db:"guest_name"`
	HostName  string `json:"host_name" db:"host_name"`
}

// AllocationSuccess records one guest placed into one room
type AllocationSuccess struct {
	Guest      string     `json:"guest"`
	Room       string     `json:"room"`
	Allocation Allocation `json:"allocation"`
}

// AllocationFailure records one guest that could not be placed
type AllocationFailure struct {
	Guest  string `json:"guest"`
	Reason string `json:"reason"`
}

// BulkAllocationResult aggregates the outcome of one allocation batch.
// len(Successful) + len(Failed) always equals the number of guests considered.
type BulkAllocationResult struct {
	Successful []AllocationSuccess `json:"successful"`
	Failed     []AllocationFailure `json:"failed"`
}

// BulkAllocateRequest represents the request to allocate rooms to guests
type BulkAllocateRequest struct {
	GuestIDs     []string `json:"guest_ids" binding:"required"`
	CheckInDate  string   `json:"check_in_date" binding:"required"`
	CheckOutDate string   `json:"check_out_date" binding:"required"`
	BookingID    string   `json:"booking_id" binding:"required"`
}

// CreateAllocationRequest represents a single manual allocation
type CreateAllocationRequest struct {
	BookingID    string `json:"booking_id" binding:"required"`
	GuestID      string `json:"guest_id" binding:"required"`
	POIID        string `json:"poi_id" binding:"required"`
	CheckInDate  string `json:"check_in_date" binding:"required"`
	CheckOutDate string `json:"check_out_date" binding:"required"`
}

// UpdateAllocationRequest represents a partial allocation update
type UpdateAllocationRequest struct {
	BookingID    *string           `json:"booking_id,omitempty"`
	GuestID      *string           `json:"guest_id,omitempty"`
	POIID        *string           `json:"poi_id,omitempty"`
	CheckInDate  *string           `json:"check_in_date,omitempty"`
	CheckOutDate *string           `json:"check_out_date,omitempty"`
	Status       *AllocationStatus `json:"status,omitempty"`
}

// Validate validates the bulk allocate request
func (r *BulkAllocateRequest) Validate() error {
	if len(r.GuestIDs) == 0 {
		return errors.New("guest_ids array is required")
	}
	if r.CheckInDate == "" || r.CheckOutDate == "" || r.BookingID == "" {
		return errors.New("guest_ids, check_in_date, check_out_date, and booking_id are required")
	}
	return nil
}
