package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// EventRepository handles event database operations
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// InsertTx inserts an event row inside an orchestrated booking transaction
func (r *EventRepository) InsertTx(tx *sqlx.Tx, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Metadata == nil {
		event.Metadata = models.JSONMap{}
	}

	query := `
		INSERT INTO events (
			id, booking_id, venue_id, name, event_type, start_time, end_time,
			description, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(query,
		event.ID, event.BookingID, event.VenueID, event.Name, event.EventType,
		event.StartTime, event.EndTime, event.Description, event.Metadata,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByBookingID retrieves all events of a booking ordered by start time
func (r *EventRepository) GetByBookingID(bookingID string) ([]models.Event, error) {
	events := []models.Event{}
	query := `
		SELECT id, booking_id, venue_id, name, event_type, start_time, end_time,
		       description, metadata, created_at, updated_at
		FROM events
		WHERE booking_id = $1
		ORDER BY start_time ASC
	`

	err := r.db.Select(&events, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(eventID string) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, booking_id, venue_id, name, event_type, start_time, end_time,
		       description, metadata, created_at, updated_at
		FROM events
		WHERE id = $1
	`

	err := r.db.Get(event, query, eventID)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Update applies a partial event update
func (r *EventRepository) Update(eventID string, req *models.UpdateEventRequest) (*models.Event, error) {
	startTime, err := parseOptionalDate(req.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := parseOptionalDate(req.EndTime)
	if err != nil {
		return nil, err
	}

	var metadata interface{}
	if req.Metadata != nil {
		metadata = req.Metadata
	}

	event := &models.Event{}
	query := `
		UPDATE events
		SET venue_id = COALESCE($2, venue_id),
		    name = COALESCE($3, name),
		    event_type = COALESCE($4, event_type),
		    start_time = COALESCE($5, start_time),
		    end_time = COALESCE($6, end_time),
		    description = COALESCE($7, description),
		    metadata = COALESCE($8, metadata),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, booking_id, venue_id, name, event_type, start_time, end_time,
		          description, metadata, created_at, updated_at
	`

	err = r.db.Get(event, query, eventID,
		req.VenueID, req.Name, req.EventType, startTime, endTime,
		req.Description, metadata)
	if err != nil {
		return nil, err
	}

	return event, nil
}

// Delete removes an event
func (r *EventRepository) Delete(eventID string) (*models.Event, error) {
	event := &models.Event{}
	query := `
		DELETE FROM events
		WHERE id = $1
		RETURNING id, booking_id, venue_id, name, event_type, start_time, end_time,
		          description, metadata, created_at, updated_at
	`

	err := r.db.Get(event, query, eventID)
	if err != nil {
		return nil, err
	}

	return event, nil
}
