package services

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/venueatlas/venue-booking-backend/internal/database"
	"github.com/venueatlas/venue-booking-backend/internal/models"
)

// AllocationService runs bulk room allocation as a single transaction:
// resolve and lock the pool, run the assignment policy, then persist each
// assignment and flip its room unavailable before committing.
type AllocationService struct {
	allocationRepo *database.AllocationRepository
	logger         *logrus.Logger
}

// NewAllocationService creates a new allocation service
func NewAllocationService(allocationRepo *database.AllocationRepository, logger *logrus.Logger) *AllocationService {
	return &AllocationService{
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

// AvailableRooms returns the current allocatable pool ordered by capacity
func (s *AllocationService) AvailableRooms() ([]models.POI, error) {
	return s.allocationRepo.AvailableRooms()
}

// BulkAllocate assigns rooms to the requested guests in one transaction.
// An empty pool aborts the whole batch with ErrNoRoomsAvailable and writes
// nothing. Once the batch is underway, a guest that cannot be persisted is
// recorded as failed without aborting the rest; its failure does not return
// the selected room to this batch's pool.
func (s *AllocationService) BulkAllocate(req *models.BulkAllocateRequest) (*models.BulkAllocationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, NewValidationError(err.Error())
	}

	checkIn, err := parseDate(req.CheckInDate)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid check_in_date: %s", req.CheckInDate))
	}
	checkOut, err := parseDate(req.CheckOutDate)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("invalid check_out_date: %s", req.CheckOutDate))
	}
	if !checkOut.After(checkIn) {
		return nil, NewValidationError("check_out_date must be after check_in_date")
	}

	tx, err := s.allocationRepo.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Resolve and lock the pool
	pool, err := s.allocationRepo.AvailableRoomsForUpdate(tx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoRoomsAvailable
	}

	// 2. Load the guests; unknown IDs fail individually
	guests, err := s.allocationRepo.GuestsByIDs(tx, req.GuestIDs)
	if err != nil {
		return nil, err
	}

	result := &models.BulkAllocationResult{
		Successful: []models.AllocationSuccess{},
		Failed:     []models.AllocationFailure{},
	}

	found := make(map[string]bool, len(guests))
	for _, g := range guests {
		found[g.ID] = true
	}
	for _, id := range req.GuestIDs {
		if !found[id] {
			result.Failed = append(result.Failed, models.AllocationFailure{
				Guest:  id,
				Reason: "guest not found",
			})
		}
	}

	// 3. Run the assignment policy over the locked pool
	policy := AllocateRooms(guests, pool)
	for _, failure := range policy.Unassigned {
		result.Failed = append(result.Failed, failure)
	}

	// 4. Persist each assignment and consume its room. Each attempt runs
	// under its own savepoint: on Postgres a failed statement aborts the
	// surrounding transaction, so rolling back to the savepoint is what
	// lets the rest of the batch proceed and still commit.
	for i, assignment := range policy.Assignments {
		alloc := &models.Allocation{
			BookingID:    req.BookingID,
			GuestID:      assignment.Guest.ID,
			POIID:        assignment.Room.ID,
			CheckInDate:  checkIn,
			CheckOutDate: checkOut,
		}

		savepoint := fmt.Sprintf("alloc_%d", i)
		if err := s.allocationRepo.Savepoint(tx, savepoint); err != nil {
			return nil, err
		}

		if err := s.persistAssignment(tx, alloc); err != nil {
			if rbErr := s.allocationRepo.RollbackToSavepoint(tx, savepoint); rbErr != nil {
				return nil, rbErr
			}
			s.logger.WithFields(logrus.Fields{
				"guest_id": assignment.Guest.ID,
				"poi_id":   assignment.Room.ID,
				"error":    err.Error(),
			}).Warn("Allocation insert failed")
			result.Failed = append(result.Failed, models.AllocationFailure{
				Guest:  assignment.Guest.Name,
				Reason: err.Error(),
			})
			continue
		}

		if err := s.allocationRepo.ReleaseSavepoint(tx, savepoint); err != nil {
			return nil, err
		}

		result.Successful = append(result.Successful, models.AllocationSuccess{
			Guest:      assignment.Guest.Name,
			Room:       assignment.Room.Name,
			Allocation: *alloc,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit allocation batch: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": req.BookingID,
		"requested":  len(req.GuestIDs),
		"successful": len(result.Successful),
		"failed":     len(result.Failed),
	}).Info("Bulk allocation completed")

	return result, nil
}

// persistAssignment writes one allocation row and flips its room
// unavailable. Both statements belong to the caller's savepoint so a
// failure leaves neither behind.
func (s *AllocationService) persistAssignment(tx *sqlx.Tx, alloc *models.Allocation) error {
	if err := s.allocationRepo.InsertAllocation(tx, alloc); err != nil {
		return err
	}
	return s.allocationRepo.MarkRoomUnavailable(tx, alloc.POIID)
}

// parseDate accepts the date formats clients actually send
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", s)
}
