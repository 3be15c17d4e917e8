package services

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

func newOrchestrator(t *testing.T) (*BookingOrchestratorService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	userRepo := database.NewUserRepository(&database.PostgresDB{DB: sqlxDB})
	guestRepo := database.NewGuestRepository(&database.PostgresDB{DB: sqlxDB})
	bookingRepo := database.NewBookingRepository(sqlxDB)
	eventRepo := database.NewEventRepository(sqlxDB)
	ingestionService := NewIngestionService(guestRepo, bookingRepo, logger)
	allocationService := NewAllocationService(database.NewAllocationRepository(sqlxDB), logger)
	return NewBookingOrchestratorService(
		userRepo, bookingRepo, eventRepo, ingestionService, allocationService, logger,
	), mock
}

func expectHostLookup(mock sqlmock.Sqlmock, email string) {
	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, password_hash`).
		WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "name", "phone", "role",
			"is_active", "created_at", "updated_at",
		}).AddRow(uuid.New(), email, "hash", "Amara Silva", nil, "host", true, now, now))
}

func expectBookingInsert(mock sqlmock.Sqlmock) {
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()
}

func expectGuestIngestion(mock sqlmock.Sqlmock, count int) {
	now := time.Now()
	mock.ExpectQuery(`SELECT id, building_id, booking_category`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "building_id", "booking_category", "host_id", "host_name",
			"host_email", "host_phone", "start_date", "end_date", "guest_count",
			"status", "metadata", "created_at", "updated_at",
		}).AddRow(
			"b1", nil, "wedding", nil, "Amara Silva",
			"amara@example.com", nil, now, now.Add(48*time.Hour), 0,
			models.BookingStatusConfirmed, []byte(`{}`), now, now,
		))

	rows := sqlmock.NewRows([]string{
		"id", "booking_id", "invitation_id", "name", "phone", "email",
		"guest_type", "status", "rsvp_token", "metadata", "created_at", "updated_at",
	})
	for i := 0; i < count; i++ {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM guests WHERE rsvp_token`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO guests`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		rows.AddRow("g", "b1", nil, "Guest", nil, nil,
			models.GuestTypeIndividual, models.GuestStatusPending, "tok", []byte(`{}`), now, now)
	}

	mock.ExpectQuery(`SELECT id, booking_id, invitation_id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectExec(`UPDATE bookings SET guest_count`).
		WithArgs(sqlmock.AnyArg(), count).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

// The booking must stand when allocation fails outright, and the response
// still has to account for every unallocated guest.
func TestCreateBookingSurfacesAllocationFailure(t *testing.T) {
	svc, mock := newOrchestrator(t)

	expectHostLookup(mock, "amara@example.com")
	expectBookingInsert(mock)
	expectGuestIngestion(mock, 1)
	mock.ExpectBegin().WillReturnError(errors.New("connection reset by peer"))

	response, err := svc.CreateBooking(&models.CreateBookingRequest{
		BookingCategory: "Wedding",
		HostName:        "Amara Silva",
		HostEmail:       "amara@example.com",
		StartDate:       "2026-09-01",
		EndDate:         "2026-09-03",
		Guests:          []models.RawGuestRecord{{Name: "Nimal", GuestType: "family"}},
	})
	require.NoError(t, err)
	require.NotNil(t, response.Booking)
	require.NotNil(t, response.Guests)
	require.Len(t, response.Guests.Successful, 1)

	require.NotNil(t, response.Allocations)
	assert.Empty(t, response.Allocations.Successful)
	require.Len(t, response.Allocations.Failed, 1)
	assert.Equal(t, "Nimal", response.Allocations.Failed[0].Guest)
	assert.Equal(t, "allocation failed", response.Allocations.Failed[0].Reason)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newOrchestrator(t)

	_, err := svc.CreateBooking(&models.CreateBookingRequest{
		BookingCategory: "Wedding",
		HostName:        "Amara Silva",
		HostEmail:       "amara@example.com",
		StartDate:       "2026-09-03",
		EndDate:         "2026-09-01",
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}
