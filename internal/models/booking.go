package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Booking is the parent reservation owning guests, events and allocations
type Booking struct {
	ID              string        `json:"id" db:"id"`
	BuildingID      *string       `json:"building_id,omitempty" db:"building_id"`
	BookingCategory string        `json:"booking_category" db:"booking_category"`
	HostID          *uuid.UUID    `json:"host_id,omitempty" db:"host_id"`
	HostName        string        `json:"host_name" db:"host_name"`
	HostEmail       string        `json:"host_email" db:"host_email"`
	HostPhone       *string       `json:"host_phone,omitempty" db:"host_phone"`
	StartDate       time.Time     `json:"start_date" db:"start_date"`
	EndDate         time.Time     `json:"end_date" db:"end_date"`
	GuestCount      int           `json:"guest_count" db:"guest_count"`
	Status          BookingStatus `json:"status" db:"status"`
	Metadata        JSONMap       `json:"metadata" db:"metadata"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// EventInput is one sub-event definition supplied at booking creation.
// Entries without a name are skipped, not rejected.
type EventInput struct {
	EventName   string  `json:"event_name"`
	VenueID     *string `json:"venue_id,omitempty"`
	EventType   string  `json:"event_type,omitempty"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Description *string `json:"description,omitempty"`
}

// CreateBookingRequest represents the orchestrated booking-create request.
// Guests may arrive inline, as an uploaded roster file, or both.
type CreateBookingRequest struct {
	BuildingID      *string          `json:"building_id,omitempty"`
	BookingCategory string           `json:"booking_category" binding:"required"`
	HostName        string           `json:"host_name" binding:"required"`
	HostEmail       string           `json:"host_email" binding:"required"`
	HostPhone       *string          `json:"host_phone,omitempty"`
	StartDate       string           `json:"start_date" binding:"required"`
	EndDate         string           `json:"end_date" binding:"required"`
	InvitationID    *string          `json:"invitation_id,omitempty"`
	Events          []EventInput     `json:"events,omitempty"`
	Guests          []RawGuestRecord `json:"guests,omitempty"`
	Metadata        JSONMap          `json:"metadata,omitempty"`
}

// UpdateBookingRequest represents a partial booking update
type UpdateBookingRequest struct {
	BuildingID      *string        `json:"building_id,omitempty"`
	BookingCategory *string        `json:"booking_category,omitempty"`
	HostName        *string        `json:"host_name,omitempty"`
	HostEmail       *string        `json:"host_email,omitempty"`
	HostPhone       *string        `json:"host_phone,omitempty"`
	StartDate       *string        `json:"start_date,omitempty"`
	EndDate         *string        `json:"end_date,omitempty"`
	GuestCount      *int           `json:"guest_count,omitempty"`
	Status          *BookingStatus `json:"status,omitempty"`
	Metadata        JSONMap        `json:"metadata,omitempty"`
}

// CreateBookingResponse is the orchestrator's aggregate result
type CreateBookingResponse struct {
	Booking      *Booking              `json:"booking"`
	Events       []Event               `json:"events"`
	Host         *User                 `json:"host"`
	HostPasscode *string               `json:"host_passcode,omitempty"`
	Guests       *IngestionResult      `json:"guests,omitempty"`
	Allocations  *BulkAllocationResult `json:"allocations,omitempty"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.HostName == "" || r.HostEmail == "" {
		return errors.New("host_name and host_email are required")
	}
	if r.StartDate == "" || r.EndDate == "" {
		return errors.New("start_date and end_date are required")
	}
	return nil
}
