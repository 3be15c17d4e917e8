package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// AllocationRepository handles room allocation database operations. Bulk
// allocation needs transactions, so it holds the raw sqlx handle rather
// than the DB interface.
type AllocationRepository struct {
	db *sqlx.DB
}

// NewAllocationRepository creates a new AllocationRepository
func NewAllocationRepository(db *sqlx.DB) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// Begin starts a transaction for a bulk allocation pass
func (r *AllocationRepository) Begin() (*sqlx.Tx, error) {
	return r.db.Beginx()
}

const availableRoomsQuery = `
	SELECT p.id, p.floor_id, p.name, p.category, p.capacity, p.status,
	       p.metadata, p.created_at, p.updated_at
	FROM pois p
	WHERE p.category = $1
	  AND p.status = $2
	  AND p.id NOT IN (
		SELECT poi_id
		FROM room_allocations
		WHERE status = $3
	  )
	ORDER BY p.capacity ASC`

// AvailableRooms returns the current pool of allocatable rooms ordered by
// ascending capacity. This is the non-locking read used by the pool
// snapshot endpoint; allocation passes must use AvailableRoomsForUpdate.
func (r *AllocationRepository) AvailableRooms() ([]models.POI, error) {
	rooms := []models.POI{}
	err := r.db.Select(&rooms, availableRoomsQuery,
		models.POICategoryRoom, models.POIStatusAvailable, models.AllocationStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve available rooms: %w", err)
	}
	return rooms, nil
}

// AvailableRoomsForUpdate resolves the pool inside tx and row-locks the
// candidate rooms so concurrent allocation passes cannot select the same
// resource.
func (r *AllocationRepository) AvailableRoomsForUpdate(tx *sqlx.Tx) ([]models.POI, error) {
	rooms := []models.POI{}
	err := tx.Select(&rooms, availableRoomsQuery+` FOR UPDATE OF p`,
		models.POICategoryRoom, models.POIStatusAvailable, models.AllocationStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve available rooms: %w", err)
	}
	return rooms, nil
}

// GuestsByIDs loads guests inside tx, preserving no particular order
func (r *AllocationRepository) GuestsByIDs(tx *sqlx.Tx, guestIDs []string) ([]models.Guest, error) {
	guests := []models.Guest{}
	query := `
		SELECT id, booking_id, invitation_id, name, phone, email,
		       guest_type, status, rsvp_token, metadata, created_at, updated_at
		FROM guests
		WHERE id = ANY($1)
	`

	err := tx.Select(&guests, query, pq.Array(guestIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load guests: %w", err)
	}

	return guests, nil
}

// InsertAllocation inserts one allocation row inside tx
func (r *AllocationRepository) InsertAllocation(tx *sqlx.Tx, alloc *models.Allocation) error {
	if alloc.ID == "" {
		alloc.ID = uuid.New().String()
	}
	if alloc.Status == "" {
		alloc.Status = models.AllocationStatusActive
	}

	query := `
		INSERT INTO room_allocations (
			id, booking_id, guest_id, poi_id, check_in_date, check_out_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := tx.QueryRow(query,
		alloc.ID, alloc.BookingID, alloc.GuestID, alloc.POIID,
		alloc.CheckInDate, alloc.CheckOutDate, alloc.Status,
	).Scan(&alloc.CreatedAt, &alloc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create allocation: %w", err)
	}

	return nil
}

// Savepoint opens a named savepoint inside tx. A failed statement puts
// the whole Postgres transaction into the aborted state, so each
// allocation attempt runs under its own savepoint and rolls back to it
// on error instead of poisoning the rest of the batch.
func (r *AllocationRepository) Savepoint(tx *sqlx.Tx, name string) error {
	if _, err := tx.Exec("SAVEPOINT " + name); err != nil {
		return fmt.Errorf("failed to open savepoint %s: %w", name, err)
	}
	return nil
}

// RollbackToSavepoint discards the statements since the named savepoint
// and clears the aborted-transaction state they caused
func (r *AllocationRepository) RollbackToSavepoint(tx *sqlx.Tx, name string) error {
	if _, err := tx.Exec("ROLLBACK TO SAVEPOINT " + name); err != nil {
		return fmt.Errorf("failed to roll back to savepoint %s: %w", name, err)
	}
	return nil
}

// ReleaseSavepoint drops the named savepoint, keeping its statements
func (r *AllocationRepository) ReleaseSavepoint(tx *sqlx.Tx, name string) error {
	if _, err := tx.Exec("RELEASE SAVEPOINT " + name); err != nil {
		return fmt.Errorf("failed to release savepoint %s: %w", name, err)
	}
	return nil
}

// MarkRoomUnavailable flips a room's availability inside tx once an
// allocation consumes it
func (r *AllocationRepository) MarkRoomUnavailable(tx *sqlx.Tx, poiID string) error {
	result, err := tx.Exec(
		`UPDATE pois SET status = $2, updated_at = NOW() WHERE id = $1`,
		poiID, models.POIStatusUnavailable,
	)
	if err != nil {
		return fmt.Errorf("failed to mark room unavailable: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("room %s not found", poiID)
	}

	return nil
}

// Create inserts a single manual allocation outside a bulk pass
func (r *AllocationRepository) Create(alloc *models.Allocation) error {
	if alloc.BookingID == "" || alloc.GuestID == "" || alloc.POIID == "" ||
		alloc.CheckInDate.IsZero() || alloc.CheckOutDate.IsZero() {
		return fmt.Errorf("booking_id, guest_id, poi_id, check_in_date and check_out_date are required")
	}

	if alloc.ID == "" {
		alloc.ID = uuid.New().String()
	}
	if alloc.Status == "" {
		alloc.Status = models.AllocationStatusActive
	}

	query := `
		INSERT INTO room_allocations (
			id, booking_id, guest_id, poi_id, check_in_date, check_out_date, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(query,
		alloc.ID, alloc.BookingID, alloc.GuestID, alloc.POIID,
		alloc.CheckInDate, alloc.CheckOutDate, alloc.Status,
	).Scan(&alloc.CreatedAt, &alloc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create allocation: %w", err)
	}

	return nil
}

// GetAll retrieves all allocations joined with room, guest and host names
func (r *AllocationRepository) GetAll() ([]models.AllocationDetail, error) {
	details := []models.AllocationDetail{}
	query := `
		SELECT ra.id, ra.booking_id, ra.guest_id, ra.poi_id,
		       ra.check_in_date, ra.check_out_date, ra.status,
		       ra.created_at, ra.updated_at,
		       p.name AS room_name,
		       g.name AS guest_name,
		       b.host_name AS host_name
		FROM room_allocations ra
		JOIN pois p ON ra.poi_id = p.id
		JOIN guests g ON ra.guest_id = g.id
		JOIN bookings b ON ra.booking_id = b.id
		ORDER BY ra.created_at DESC
	`

	err := r.db.Select(&details, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}

	return details, nil
}

// GetByID retrieves one allocation with its joined names
func (r *AllocationRepository) GetByID(allocationID string) (*models.AllocationDetail, error) {
	detail := &models.AllocationDetail{}
	query := `
		SELECT ra.id, ra.booking_id, ra.guest_id, ra.poi_id,
		       ra.check_in_date, ra.check_out_date, ra.status,
		       ra.created_at, ra.updated_at,
		       p.name AS room_name,
		       g.name AS guest_name,
		       b.host_name AS host_name
		FROM room_allocations ra
		JOIN pois p ON ra.poi_id = p.id
		JOIN guests g ON ra.guest_id = g.id
		JOIN bookings b ON ra.booking_id = b.id
		WHERE ra.id = $1
	`

	err := r.db.Get(detail, query, allocationID)
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// CountActiveByPOI returns the number of active allocations referencing a room
func (r *AllocationRepository) CountActiveByPOI(poiID string) (int, error) {
	var count int
	err := r.db.Get(&count,
		`SELECT COUNT(*) FROM room_allocations WHERE poi_id = $1 AND status = $2`,
		poiID, models.AllocationStatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to count active allocations: %w", err)
	}
	return count, nil
}

// Update applies a partial allocation update
func (r *AllocationRepository) Update(allocationID string, req *models.UpdateAllocationRequest) (*models.Allocation, error) {
	checkIn, err := parseOptionalDate(req.CheckInDate)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseOptionalDate(req.CheckOutDate)
	if err != nil {
		return nil, err
	}

	alloc := &models.Allocation{}
	query := `
		UPDATE room_allocations
		SET booking_id = COALESCE($2, booking_id),
		    guest_id = COALESCE($3, guest_id),
		    poi_id = COALESCE($4, poi_id),
		    check_in_date = COALESCE($5, check_in_date),
		    check_out_date = COALESCE($6, check_out_date),
		    status = COALESCE($7, status),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, booking_id, guest_id, poi_id, check_in_date, check_out_date,
		          status, created_at, updated_at
	`

	err = r.db.Get(alloc, query, allocationID,
		req.BookingID, req.GuestID, req.POIID, checkIn, checkOut, req.Status)
	if err != nil {
		return nil, err
	}

	return alloc, nil
}

// Delete removes an allocation row
func (r *AllocationRepository) Delete(allocationID string) (*models.Allocation, error) {
	alloc := &models.Allocation{}
	query := `
		DELETE FROM room_allocations
		WHERE id = $1
		RETURNING id, booking_id, guest_id, poi_id, check_in_date, check_out_date,
		          status, created_at, updated_at
	`

	err := r.db.Get(alloc, query, allocationID)
	if err != nil {
		return nil, err
	}

	return alloc, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date: %s", *s)
}
