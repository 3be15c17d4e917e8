package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// BookingRepository handles booking database operations. Orchestrated
// creates write the booking and its events in one transaction, so it holds
// the raw sqlx handle.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Begin starts a transaction for an orchestrated booking create
func (r *BookingRepository) Begin() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

// InsertTx inserts a booking row inside tx
func (r *BookingRepository) InsertTx(tx *sqlx.Tx, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusConfirmed
	}
	if booking.Metadata == nil {
		booking.Metadata = models.JSONMap{}
	}
	booking.HostEmail = strings.ToLower(strings.TrimSpace(booking.HostEmail))

	query := `
		INSERT INTO bookings (
			id, building_id, booking_category, host_id, host_name, host_email,
			host_phone, start_date, end_date, guest_count, status, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(query,
		booking.ID, booking.BuildingID, booking.BookingCategory, booking.HostID,
		booking.HostName, booking.HostEmail, booking.HostPhone,
		booking.StartDate, booking.EndDate, booking.GuestCount,
		booking.Status, booking.Metadata,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetAll retrieves all bookings ordered by newest first
func (r *BookingRepository) GetAll() ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT id, building_id, booking_category, host_id, host_name, host_email,
		       host_phone, start_date, end_date, guest_count, status, metadata,
		       created_at, updated_at
		FROM bookings
		ORDER BY created_at DESC
	`

	err := r.db.Select(&bookings, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, building_id, booking_category, host_id, host_name, host_email,
		       host_phone, start_date, end_date, guest_count, status, metadata,
		       created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	err := r.db.Get(booking, query, bookingID)
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByHostID retrieves bookings owned by a host account
func (r *BookingRepository) GetByHostID(hostID uuid.UUID) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := `
		SELECT id, building_id, booking_category, host_id, host_name, host_email,
		       host_phone, start_date, end_date, guest_count, status, metadata,
		       created_at, updated_at
		FROM bookings
		WHERE host_id = $1
		ORDER BY created_at DESC
	`

	err := r.db.Select(&bookings, query, hostID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings for host: %w", err)
	}

	return bookings, nil
}

// Update applies a partial booking update
func (r *BookingRepository) Update(bookingID string, req *models.UpdateBookingRequest) (*models.Booking, error) {
	startDate, err := parseOptionalDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	var metadata interface{}
	if req.Metadata != nil {
		metadata = req.Metadata
	}

	booking := &models.Booking{}
	query := `
		UPDATE bookings
		SET building_id = COALESCE($2, building_id),
		    booking_category = COALESCE($3, booking_category),
		    host_name = COALESCE($4, host_name),
		    host_email = COALESCE(LOWER($5), host_email),
		    host_phone = COALESCE($6, host_phone),
		    start_date = COALESCE($7, start_date),
		    end_date = COALESCE($8, end_date),
		    guest_count = COALESCE($9, guest_count),
		    status = COALESCE($10, status),
		    metadata = COALESCE($11, metadata),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, building_id, booking_category, host_id, host_name, host_email,
		          host_phone, start_date, end_date, guest_count, status, metadata,
		          created_at, updated_at
	`

	err = r.db.Get(booking, query, bookingID,
		req.BuildingID, req.BookingCategory, req.HostName, req.HostEmail,
		req.HostPhone, startDate, endDate, req.GuestCount, req.Status, metadata)
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// UpdateGuestCount refreshes the denormalized guest count after ingestion
func (r *BookingRepository) UpdateGuestCount(bookingID string, count int) error {
	_, err := r.db.Exec(
		`UPDATE bookings SET guest_count = $2, updated_at = NOW() WHERE id = $1`,
		bookingID, count)
	if err != nil {
		return fmt.Errorf("failed to update guest count: %w", err)
	}
	return nil
}

// Delete removes a booking and, via cascading constraints, its guests,
// events and allocations
func (r *BookingRepository) Delete(bookingID string) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		DELETE FROM bookings
		WHERE id = $1
		RETURNING id, building_id, booking_category, host_id, host_name, host_email,
		          host_phone, start_date, end_date, guest_count, status, metadata,
		          created_at, updated_at
	`

	err := r.db.Get(booking, query, bookingID)
	if err != nil {
		return nil, err
	}

	return booking, nil
}
