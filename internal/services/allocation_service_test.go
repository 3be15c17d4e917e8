package services

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

func newAllocationService(t *testing.T) (*AllocationService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewAllocationService(database.NewAllocationRepository(sqlxDB), logger), mock
}

func poolRows(rooms ...models.POI) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "floor_id", "name", "category", "capacity", "status",
		"metadata", "created_at", "updated_at",
	})
	now := time.Now()
	for _, r := range rooms {
		rows.AddRow(r.ID, nil, r.Name, r.Category, r.Capacity, r.Status,
			[]byte(`{}`), now, now)
	}
	return rows
}

func guestRows(guests ...models.Guest) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "booking_id", "invitation_id", "name", "phone", "email",
		"guest_type", "status", "rsvp_token", "metadata", "created_at", "updated_at",
	})
	now := time.Now()
	for _, g := range guests {
		rows.AddRow(g.ID, g.BookingID, nil, g.Name, nil, nil,
			g.GuestType, models.GuestStatusPending, "tok"+g.ID, []byte(`{}`), now, now)
	}
	return rows
}

func TestBulkAllocateValidation(t *testing.T) {
	svc, _ := newAllocationService(t)

	t.Run("empty guest ids", func(t *testing.T) {
		_, err := svc.BulkAllocate(&models.BulkAllocateRequest{
			CheckInDate:  "2026-09-01",
			CheckOutDate: "2026-09-03",
			BookingID:    "b1",
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("check out before check in", func(t *testing.T) {
		_, err := svc.BulkAllocate(&models.BulkAllocateRequest{
			GuestIDs:     []string{"g1"},
			CheckInDate:  "2026-09-03",
			CheckOutDate: "2026-09-01",
			BookingID:    "b1",
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := svc.BulkAllocate(&models.BulkAllocateRequest{
			GuestIDs:     []string{"g1"},
			CheckInDate:  "not-a-date",
			CheckOutDate: "2026-09-01",
			BookingID:    "b1",
		})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestBulkAllocatePoolExhausted(t *testing.T) {
	svc, mock := newAllocationService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(poolRows())
	mock.ExpectRollback()

	result, err := svc.BulkAllocate(&models.BulkAllocateRequest{
		GuestIDs:     []string{"g1", "g2"},
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		BookingID:    "b1",
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoRoomsAvailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkAllocateSuccess(t *testing.T) {
	svc, mock := newAllocationService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(poolRows(
		models.POI{ID: "r1", Name: "Room A", Category: models.POICategoryRoom, Capacity: 1, Status: models.POIStatusAvailable},
		models.POI{ID: "r2", Name: "Room B", Category: models.POICategoryRoom, Capacity: 4, Status: models.POIStatusAvailable},
	))
	mock.ExpectQuery(`SELECT id, booking_id, invitation_id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(guestRows(
			models.Guest{ID: "g1", BookingID: "b1", Name: "Amara", GuestType: models.GuestTypeFamily},
			models.Guest{ID: "g2", BookingID: "b1", Name: "Nimal", GuestType: models.GuestTypeIndividual},
		))

	// Family is served first and takes the larger room
	mock.ExpectExec(`^SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WithArgs(sqlmock.AnyArg(), "b1", "g1", "r2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.AllocationStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE pois SET status`).
		WithArgs("r2", models.POIStatusUnavailable).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^RELEASE SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`^SAVEPOINT alloc_1$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WithArgs(sqlmock.AnyArg(), "b1", "g2", "r1", sqlmock.AnyArg(), sqlmock.AnyArg(), models.AllocationStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE pois SET status`).
		WithArgs("r1", models.POIStatusUnavailable).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^RELEASE SAVEPOINT alloc_1$`).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectCommit()

	result, err := svc.BulkAllocate(&models.BulkAllocateRequest{
		GuestIDs:     []string{"g1", "g2"},
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		BookingID:    "b1",
	})
	require.NoError(t, err)
	require.Len(t, result.Successful, 2)
	assert.Empty(t, result.Failed)
	assert.Equal(t, "Amara", result.Successful[0].Guest)
	assert.Equal(t, "Room B", result.Successful[0].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkAllocateUnknownGuestFails(t *testing.T) {
	svc, mock := newAllocationService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(poolRows(
		models.POI{ID: "r1", Name: "Room A", Category: models.POICategoryRoom, Capacity: 2, Status: models.POIStatusAvailable},
	))
	mock.ExpectQuery(`SELECT id, booking_id, invitation_id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(guestRows(
			models.Guest{ID: "g1", BookingID: "b1", Name: "Amara", GuestType: models.GuestTypeFamily},
		))
	mock.ExpectExec(`^SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WithArgs(sqlmock.AnyArg(), "b1", "g1", "r1", sqlmock.AnyArg(), sqlmock.AnyArg(), models.AllocationStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE pois SET status`).
		WithArgs("r1", models.POIStatusUnavailable).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^RELEASE SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := svc.BulkAllocate(&models.BulkAllocateRequest{
		GuestIDs:     []string{"g1", "missing"},
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		BookingID:    "b1",
	})
	require.NoError(t, err)
	require.Len(t, result.Successful, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "missing", result.Failed[0].Guest)
	assert.Equal(t, "guest not found", result.Failed[0].Reason)
	assert.Equal(t, 2, len(result.Successful)+len(result.Failed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkAllocateMoreGuestsThanRooms(t *testing.T) {
	svc, mock := newAllocationService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(poolRows(
		models.POI{ID: "r1", Name: "Room A", Category: models.POICategoryRoom, Capacity: 2, Status: models.POIStatusAvailable},
	))
	mock.ExpectQuery(`SELECT id, booking_id, invitation_id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(guestRows(
			models.Guest{ID: "g1", BookingID: "b1", Name: "Amara", GuestType: models.GuestTypeFamily},
			models.Guest{ID: "g2", BookingID: "b1", Name: "Nimal", GuestType: models.GuestTypeIndividual},
		))
	mock.ExpectExec(`^SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WithArgs(sqlmock.AnyArg(), "b1", "g1", "r1", sqlmock.AnyArg(), sqlmock.AnyArg(), models.AllocationStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE pois SET status`).
		WithArgs("r1", models.POIStatusUnavailable).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^RELEASE SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := svc.BulkAllocate(&models.BulkAllocateRequest{
		GuestIDs:     []string{"g1", "g2"},
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		BookingID:    "b1",
	})
	require.NoError(t, err)
	require.Len(t, result.Successful, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "no rooms available", result.Failed[0].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A persistence failure for one guest must stay contained: the aborted
// statements roll back to the assignment's savepoint, the rest of the
// batch proceeds, and the transaction still commits.
func TestBulkAllocateFailedInsertRollsBackToSavepoint(t *testing.T) {
	svc, mock := newAllocationService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(poolRows(
		models.POI{ID: "r1", Name: "Room A", Category: models.POICategoryRoom, Capacity: 1, Status: models.POIStatusAvailable},
		models.POI{ID: "r2", Name: "Room B", Category: models.POICategoryRoom, Capacity: 4, Status: models.POIStatusAvailable},
	))
	mock.ExpectQuery(`SELECT id, booking_id, invitation_id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(guestRows(
			models.Guest{ID: "g1", BookingID: "b1", Name: "Amara", GuestType: models.GuestTypeFamily},
			models.Guest{ID: "g2", BookingID: "b1", Name: "Nimal", GuestType: models.GuestTypeIndividual},
		))

	mock.ExpectExec(`^SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WithArgs(sqlmock.AnyArg(), "b1", "g1", "r2", sqlmock.AnyArg(), sqlmock.AnyArg(), models.AllocationStatusActive).
		WillReturnError(errors.New(`pq: insert or update on table "room_allocations" violates foreign key constraint`))
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`^SAVEPOINT alloc_1$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WithArgs(sqlmock.AnyArg(), "b1", "g2", "r1", sqlmock.AnyArg(), sqlmock.AnyArg(), models.AllocationStatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE pois SET status`).
		WithArgs("r1", models.POIStatusUnavailable).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^RELEASE SAVEPOINT alloc_1$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	result, err := svc.BulkAllocate(&models.BulkAllocateRequest{
		GuestIDs:     []string{"g1", "g2"},
		CheckInDate:  "2026-09-01",
		CheckOutDate: "2026-09-03",
		BookingID:    "b1",
	})
	require.NoError(t, err)
	require.Len(t, result.Successful, 1)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Amara", result.Failed[0].Guest)
	assert.Contains(t, result.Failed[0].Reason, "foreign key")
	assert.Equal(t, "Nimal", result.Successful[0].Guest)
	assert.NoError(t, mock.ExpectationsWereMet())
}
