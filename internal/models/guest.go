package models

import (
	"strings"
	"time"
)

// GuestType is the closed classification driving allocation priority and
// room-size selection. Unknown inputs normalize to GuestTypeOther rather
// than failing ingestion.
type GuestType string

const (
	GuestTypeFamily     GuestType = "family"
	GuestTypeFriend     GuestType = "friend"
	GuestTypeIndividual GuestType = "guest"
	GuestTypeOther      GuestType = "other"
)

// ParseGuestType normalizes a free-form guest type string
func ParseGuestType(s string) GuestType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "family":
		return GuestTypeFamily
	case "friend", "friends":
		return GuestTypeFriend
	case "", "guest", "individual":
		return GuestTypeIndividual
	default:
		return GuestTypeOther
	}
}

// GuestStatus tracks the RSVP lifecycle of a guest
type GuestStatus string

const (
	GuestStatusPending  GuestStatus = "pending"
	GuestStatusViewed   GuestStatus = "viewed"
	GuestStatusAccepted GuestStatus = "accepted"
	GuestStatusDeclined GuestStatus = "declined"
)

// Guest represents one invitee belonging to a booking
type Guest struct {
	ID           string      `json:"id" db:"id"`
	BookingID    string      `json:"booking_id" db:"booking_id"`
	InvitationID *string     `json:"invitation_id,omitempty" db:"invitation_id"`
	Name         string      `json:"name" db:"name"`
	Phone        *string     `json:"phone,omitempty" db:"phone"`
	Email        *string     `json:"email,omitempty" db:"email"`
	GuestType    GuestType   `json:"guest_type" db:"guest_type"`
	Status       GuestStatus `json:"status" db:"status"`
	RSVPToken    string      `json:"rsvp_token" db:"rsvp_token"`
	Metadata     JSONMap     `json:"metadata" db:"metadata"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// RawGuestRecord is one row of guest input before validation, as it
// arrives from a request body or a parsed spreadsheet
type RawGuestRecord struct {
	Name      string  `json:"name"`
	Phone     *string `json:"phone,omitempty"`
	Email     *string `json:"email,omitempty"`
	GuestType string  `json:"guest_type,omitempty"`
	Metadata  JSONMap `json:"metadata,omitempty"`
}

// FailedGuestRecord pairs a rejected input record with the reason
type FailedGuestRecord struct {
	Record RawGuestRecord `json:"record"`
	Reason string         `json:"reason"`
}

// IngestionResult aggregates per-record outcomes of a bulk guest ingest.
// len(Successful) + len(Failed) always equals the input length.
type IngestionResult struct {
	Successful []Guest             `json:"successful"`
	Failed     []FailedGuestRecord `json:"failed"`
}

// UpdateGuestRequest represents a partial guest update
type UpdateGuestRequest struct {
	Name      *string      `json:"name,omitempty"`
	Phone     *string      `json:"phone,omitempty"`
	Email     *string      `json:"email,omitempty"`
	GuestType *string      `json:"guest_type,omitempty"`
	Status    *GuestStatus `json:"status,omitempty"`
	Metadata  JSONMap      `json:"metadata,omitempty"`
}
