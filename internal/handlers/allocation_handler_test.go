package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
	"github.com/venueatlas/venue-booking-backend/internal/services"
)

func newAllocationRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	allocationRepo := database.NewAllocationRepository(sqlxDB)
	allocationService := services.NewAllocationService(allocationRepo, logger)
	guestRepo := database.NewGuestRepository(&database.PostgresDB{DB: sqlxDB})
	bookingRepo := database.NewBookingRepository(sqlxDB)
	ingestionService := services.NewIngestionService(guestRepo, bookingRepo, logger)
	handler := NewAllocationHandler(allocationRepo, allocationService, ingestionService, 1<<20, logger)

	router := gin.New()
	router.POST("/allocations/bulk", handler.BulkAllocate)
	router.GET("/allocations/rooms/available", handler.AvailableRooms)
	return router, mock
}

func TestBulkAllocateHandlerValidation(t *testing.T) {
	router, _ := newAllocationRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing guest ids", `{"check_in_date":"2026-09-01","check_out_date":"2026-09-03","booking_id":"b1"}`},
		{"missing dates", `{"guest_ids":["g1"],"booking_id":"b1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/allocations/bulk", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body, "error")
		})
	}
}

func TestBulkAllocateHandlerPoolExhausted(t *testing.T) {
	router, mock := newAllocationRouter(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(sqlmock.NewRows([]string{
		"id", "floor_id", "name", "category", "capacity", "status",
		"metadata", "created_at", "updated_at",
	}))
	mock.ExpectRollback()

	body := `{"guest_ids":["g1"],"check_in_date":"2026-09-01","check_out_date":"2026-09-03","booking_id":"b1"}`
	req := httptest.NewRequest(http.MethodPost, "/allocations/bulk", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "no rooms available")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkAllocateHandlerResponseShape(t *testing.T) {
	router, mock := newAllocationRouter(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(sqlmock.NewRows([]string{
		"id", "floor_id", "name", "category", "capacity", "status",
		"metadata", "created_at", "updated_at",
	}).AddRow("r1", nil, "Room A", models.POICategoryRoom, 2, models.POIStatusAvailable, []byte(`{}`), now, now))
	mock.ExpectQuery(`SELECT id, booking_id, invitation_id`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "booking_id", "invitation_id", "name", "phone", "email",
			"guest_type", "status", "rsvp_token", "metadata", "created_at", "updated_at",
		}).AddRow("g1", "b1", nil, "Amara", nil, nil,
			models.GuestTypeFamily, models.GuestStatusPending, "tok1", []byte(`{}`), now, now))
	mock.ExpectExec(`^SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO room_allocations`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(`UPDATE pois SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^RELEASE SAVEPOINT alloc_0$`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	body := `{"guest_ids":["g1"],"check_in_date":"2026-09-01","check_out_date":"2026-09-03","booking_id":"b1"}`
	req := httptest.NewRequest(http.MethodPost, "/allocations/bulk", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Status     string                      `json:"status"`
		Total      int                         `json:"total"`
		Successful int                         `json:"successful"`
		Failed     int                         `json:"failed"`
		Results    models.BulkAllocationResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 1, resp.Successful)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Results.Successful, 1)
	assert.Equal(t, "Amara", resp.Results.Successful[0].Guest)
	assert.Equal(t, "Room A", resp.Results.Successful[0].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailableRoomsHandler(t *testing.T) {
	router, mock := newAllocationRouter(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT p\.id`).WillReturnRows(sqlmock.NewRows([]string{
		"id", "floor_id", "name", "category", "capacity", "status",
		"metadata", "created_at", "updated_at",
	}).
		AddRow("r1", nil, "Room A", models.POICategoryRoom, 1, models.POIStatusAvailable, []byte(`{}`), now, now).
		AddRow("r2", nil, "Room B", models.POICategoryRoom, 4, models.POIStatusAvailable, []byte(`{}`), now, now))

	req := httptest.NewRequest(http.MethodGet, "/allocations/rooms/available", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rooms []models.POI `json:"rooms"`
		Count int          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, "Room A", resp.Rooms[0].Name)
}
