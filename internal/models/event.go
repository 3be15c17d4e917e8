package models

import "time"

// Event is a sub-event of a booking (ceremony, reception, ...)
type Event struct {
	ID          string     `json:"id" db:"id"`
	BookingID   string     `json:"booking_id" db:"booking_id"`
	VenueID     *string    `json:"venue_id,omitempty" db:"venue_id"`
	Name        string     `json:"name" db:"name"`
	EventType   string     `json:"event_type" db:"event_type"`
	StartTime   time.Time  `json:"start_time" db:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty" db:"end_time"`
	Description *string    `json:"description,omitempty" db:"description"`
	Metadata    JSONMap    `json:"metadata" db:"metadata"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// UpdateEventRequest represents a partial event update
type UpdateEventRequest struct {
	VenueID     *string `json:"venue_id,omitempty"`
	Name        *string `json:"name,omitempty"`
	EventType   *string `json:"event_type,omitempty"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Description *string `json:"description,omitempty"`
	Metadata    JSONMap `json:"metadata,omitempty"`
}
