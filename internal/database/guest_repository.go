package database

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

const (
	rsvpTokenCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	rsvpTokenLength  = 10
)

// GuestRepository handles guest database operations
type GuestRepository struct {
	db DB
}

// NewGuestRepository creates a new guest repository
func NewGuestRepository(db DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// GenerateRSVPToken generates a unique opaque token used for public RSVP
// lookup. Tokens are drawn from a 62-character alphabet with crypto/rand
// and checked against the guests table before use.
func (r *GuestRepository) GenerateRSVPToken() (string, error) {
	for attempts := 0; attempts < 10; attempts++ {
		buf := make([]byte, rsvpTokenLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(rsvpTokenCharset))))
			if err != nil {
				return "", fmt.Errorf("failed to generate random token: %w", err)
			}
			buf[i] = rsvpTokenCharset[n.Int64()]
		}
		token := string(buf)

		var count int
		err := r.db.Get(&count, `SELECT COUNT(*) FROM guests WHERE rsvp_token = $1`, token)
		if err != nil {
			return "", fmt.Errorf("failed to check token uniqueness: %w", err)
		}

		if count == 0 {
			return token, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique rsvp token after 10 attempts")
}

// Create persists one guest. The caller supplies name and booking id;
// everything else defaults here.
func (r *GuestRepository) Create(guest *models.Guest) error {
	if guest.BookingID == "" || guest.Name == "" {
		return fmt.Errorf("booking_id and name are required")
	}

	if guest.ID == "" {
		guest.ID = uuid.New().String()
	}
	if guest.GuestType == "" {
		guest.GuestType = models.GuestTypeIndividual
	}
	if guest.Status == "" {
		guest.Status = models.GuestStatusPending
	}
	if guest.Metadata == nil {
		guest.Metadata = models.JSONMap{}
	}
	if guest.RSVPToken == "" {
		token, err := r.GenerateRSVPToken()
		if err != nil {
			return err
		}
		guest.RSVPToken = token
	}

	query := `
		INSERT INTO guests (
			id, booking_id, invitation_id, name, phone, email,
			guest_type, status, rsvp_token, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		guest.ID, guest.BookingID, guest.InvitationID, guest.Name, guest.Phone, guest.Email,
		guest.GuestType, guest.Status, guest.RSVPToken, guest.Metadata,
	).Scan(&guest.CreatedAt, &guest.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create guest: %w", err)
	}

	return nil
}

// GetByID retrieves a guest by ID
func (r *GuestRepository) GetByID(guestID string) (*models.Guest, error) {
	guest := &models.Guest{}
	query := `
		SELECT id, booking_id, invitation_id, name, phone, email,
		       guest_type, status, rsvp_token, metadata, created_at, updated_at
		FROM guests
		WHERE id = $1
	`

	err := r.db.Get(guest, query, guestID)
	if err != nil {
		return nil, err
	}

	return guest, nil
}

// GetByBookingID retrieves all guests belonging to a booking
func (r *GuestRepository) GetByBookingID(bookingID string) ([]models.Guest, error) {
	guests := []models.Guest{}
	query := `
		SELECT id, booking_id, invitation_id, name, phone, email,
		       guest_type, status, rsvp_token, metadata, created_at, updated_at
		FROM guests
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.Select(&guests, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guests for booking: %w", err)
	}

	return guests, nil
}

// GetByRSVPToken retrieves a guest by its public RSVP token
func (r *GuestRepository) GetByRSVPToken(token string) (*models.Guest, error) {
	guest := &models.Guest{}
	query := `
		SELECT id, booking_id, invitation_id, name, phone, email,
		       guest_type, status, rsvp_token, metadata, created_at, updated_at
		FROM guests
		WHERE rsvp_token = $1
	`

	err := r.db.Get(guest, query, token)
	if err != nil {
		return nil, err
	}

	return guest, nil
}

// MarkViewedByToken flips a pending guest to viewed on first RSVP open
func (r *GuestRepository) MarkViewedByToken(token string) (*models.Guest, error) {
	guest := &models.Guest{}
	query := `
		UPDATE guests
		SET status = $2, updated_at = NOW()
		WHERE rsvp_token = $1 AND status = $3
		RETURNING id, booking_id, invitation_id, name, phone, email,
		          guest_type, status, rsvp_token, metadata, created_at, updated_at
	`

	err := r.db.Get(guest, query, token, models.GuestStatusViewed, models.GuestStatusPending)
	if err != nil {
		if err == sql.ErrNoRows {
			// Already viewed or responded; return current state
			return r.GetByRSVPToken(token)
		}
		return nil, fmt.Errorf("failed to mark guest viewed: %w", err)
	}

	return guest, nil
}

// UpdateStatusByToken updates a guest's RSVP status via its token
func (r *GuestRepository) UpdateStatusByToken(token string, status models.GuestStatus) (*models.Guest, error) {
	guest := &models.Guest{}
	query := `
		UPDATE guests
		SET status = $2, updated_at = NOW()
		WHERE rsvp_token = $1
		RETURNING id, booking_id, invitation_id, name, phone, email,
		          guest_type, status, rsvp_token, metadata, created_at, updated_at
	`

	err := r.db.Get(guest, query, token, status)
	if err != nil {
		return nil, err
	}

	return guest, nil
}

// Update applies a partial guest update
func (r *GuestRepository) Update(guestID string, req *models.UpdateGuestRequest) (*models.Guest, error) {
	var guestType *models.GuestType
	if req.GuestType != nil {
		t := models.ParseGuestType(*req.GuestType)
		guestType = &t
	}

	guest := &models.Guest{}
	query := `
		UPDATE guests
		SET name = COALESCE($2, name),
		    phone = COALESCE($3, phone),
		    email = COALESCE($4, email),
		    guest_type = COALESCE($5, guest_type),
		    status = COALESCE($6, status),
		    metadata = COALESCE($7, metadata),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, booking_id, invitation_id, name, phone, email,
		          guest_type, status, rsvp_token, metadata, created_at, updated_at
	`

	var metadata interface{}
	if req.Metadata != nil {
		metadata = req.Metadata
	}

	err := r.db.Get(guest, query, guestID, req.Name, req.Phone, req.Email, guestType, req.Status, metadata)
	if err != nil {
		return nil, err
	}

	return guest, nil
}

// Delete removes a guest
func (r *GuestRepository) Delete(guestID string) error {
	result, err := r.db.Exec(`DELETE FROM guests WHERE id = $1`, guestID)
	if err != nil {
		return fmt.Errorf("failed to delete guest: %w", err)
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
